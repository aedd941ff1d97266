package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/airportinternet/airport/conn"
	"github.com/airportinternet/airport/restapi/api"
	"github.com/airportinternet/airport/setting"
	"github.com/docopt/docopt-go"
	log "github.com/sirupsen/logrus"
)

// stateWatchInterval is how often connect checks whether iodine is still alive
const stateWatchInterval = 500 * time.Millisecond

// settingFromArguments loads --config if present and applies the command line flags on top of it.
func settingFromArguments(arguments docopt.Opts) (setting.Setting, error) {
	var s setting.Setting
	if path, err := arguments.String("--config"); err == nil && path != "" {
		loaded, err := setting.Load(path)
		if err != nil {
			return setting.Setting{}, err
		}
		s = loaded
	}
	if topDomain, err := arguments.String("<topdomain>"); err == nil && topDomain != "" {
		s.TopDomain = topDomain
	}
	if password, err := arguments.String("--password"); err == nil && password != "" {
		s.Password = password
	}
	if nameserver, err := arguments.String("--nameserver"); err == nil && nameserver != "" {
		s.Nameserver = nameserver
	}
	if noRaw, _ := arguments.Bool("--noraw"); noRaw {
		s.DisableRaw = true
	}
	if noLazy, _ := arguments.Bool("--nolazy"); noLazy {
		s.DisableLazyMode = true
	}
	return s, s.Validate()
}

func optionsFromArguments(arguments docopt.Opts) conn.Options {
	opts := conn.DefaultOptions()
	if binary, err := arguments.String("--binary"); err == nil && binary != "" {
		opts.TunnelBinary = binary
	}
	if script, err := arguments.String("--script"); err == nil && script != "" {
		opts.RoutingScript = script
	}
	return opts
}

func apiPort(arguments docopt.Opts) (int, error) {
	raw, err := arguments.String("--api-port")
	if err != nil || raw == "" {
		return api.DefaultHttpApiPort, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid api port '%s'", raw)
	}
	return port, nil
}

func runConnect(arguments docopt.Opts) error {
	s, err := settingFromArguments(arguments)
	if err != nil {
		return err
	}
	opts := optionsFromArguments(arguments)
	port, err := apiPort(arguments)
	if err != nil {
		return err
	}

	force, _ := arguments.Bool("--force")
	if !force {
		v, err := conn.CheckTunnelVersion(opts.TunnelBinary)
		if err != nil {
			return fmt.Errorf("runConnect: %w", err)
		}
		log.WithField("version", v.String()).Info("iodine version ok")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := conn.NewTimerScheduler()
	defer scheduler.Close()

	c := conn.NewForkConnector(opts, conn.LogrusSink{Entry: log.WithField("source", "iodine")}, scheduler)
	if err := c.Start(ctx, s); err != nil {
		return fmt.Errorf("runConnect: %w", err)
	}

	go func() {
		if err := api.Serve(ctx, port, c); err != nil {
			log.WithError(err).Warn("status api not available")
		}
	}()

	waitForDisconnect(ctx, c, stateWatchInterval)
	if err := c.Stop(); err != nil {
		return fmt.Errorf("runConnect: %w", err)
	}
	log.WithField("state", c.State().String()).Info("connector stopped")
	return nil
}

// waitForDisconnect returns when ctx is done or the connector reached Disconnected.
func waitForDisconnect(ctx context.Context, c conn.Connector, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if c.State() == conn.Disconnected {
			return
		}
		select {
		case <-ctx.Done():
			log.Info("interrupted, stopping tunnel")
			return
		case <-ticker.C:
		}
	}
}

func fetchStatus(arguments docopt.Opts) (conn.Status, error) {
	port, err := apiPort(arguments)
	if err != nil {
		return conn.Status{}, err
	}
	return api.FetchStatus(port)
}

func stopRemote(arguments docopt.Opts) (conn.Status, error) {
	port, err := apiPort(arguments)
	if err != nil {
		return conn.Status{}, err
	}
	return api.StopRemote(port)
}
