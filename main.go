package main

import (
	"encoding/json"
	"fmt"

	"github.com/airportinternet/airport/conn"
	_ "github.com/airportinternet/airport/restapi/docs"
	"github.com/docopt/docopt-go"
	log "github.com/sirupsen/logrus"
)

// JSONdisabled enables or disables output in JSON format
var JSONdisabled = false

// @title           Airport connector API
// @version         0.01
// @description     Status and control of a running iodine connector.

// @contact.name   Airport Internet
// @contact.url    https://github.com/airportinternet/airport

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:28200
// @BasePath  /api/v1
func main() {
	Main()
}

const version = "local-build"

const usage = `airport %s

Usage:
  airport connect [options] [--config=<plist>] [--password=<password>] [--nameserver=<nameserver>] [--noraw] [--nolazy] [--api-port=<port>] [--force] [<topdomain>]
  airport save-config <plist> [options] [--password=<password>] [--nameserver=<nameserver>] [--noraw] [--nolazy] <topdomain>
  airport check [options]
  airport status [options] [--api-port=<port>]
  airport stop [options] [--api-port=<port>]
  airport -h | --help
  airport --version | version [options]

Options:
  -v --verbose               Enable Debug Logging.
  -t --trace                 Enable Trace Logging (dump every poll).
  --nojson                   Disable JSON output (default).
  -h --help                  Show this screen.
  --binary=<path>            Path of the iodine client [default: /data/data/org.airportinternet/iodine].
  --script=<path>            Path of the routing script [default: /data/data/org.airportinternet/routing.sh].

The commands work as following:
	The default output of all commands is JSON. Should you prefer human readable output, specify the --nojson option with your command.
	Specify -v for debug logging and -t for trace logging.

   airport connect [options] [<topdomain>]          Starts iodine for <topdomain> and keeps it running until interrupted. Once the tunnel is set up
                                                    the routing script is run with the direct server address or "indirect".
                                                    Settings are read from --config if given, flags override them.
                                                    --force skips the iodine version check.
                                                    The connector status is served on 127.0.0.1:--api-port (default 28200).
   airport save-config <plist> <topdomain>          Writes the given settings to a plist file for later use with --config.
   airport check                                    Checks that the iodine binary exists and is recent enough.
   airport status [--api-port=<port>]               Prints the status of a running 'airport connect'.
   airport stop [--api-port=<port>]                 Stops a running 'airport connect' and waits until iodine is gone.
   airport -h | --help                              Prints this screen.
   airport --version | version [options]            Prints the version
`

// Main Exports main for testing
func Main() {
	arguments, err := docopt.ParseDoc(fmt.Sprintf(usage, version))
	if err != nil {
		log.Fatal(err)
	}
	configureLogging(arguments)
	log.Debug(arguments)

	shouldPrintVersionNoDashes, _ := arguments.Bool("version")
	shouldPrintVersion, _ := arguments.Bool("--version")
	if shouldPrintVersionNoDashes || shouldPrintVersion {
		printVersion()
		return
	}

	b, _ := arguments.Bool("check")
	if b {
		binary, _ := arguments.String("--binary")
		v, err := conn.CheckTunnelVersion(binary)
		exitIfError("iodine version check failed", err)
		printResult(map[string]interface{}{"binary": binary, "version": v.String()}, fmt.Sprintf("%s: %s", binary, v))
		return
	}

	b, _ = arguments.Bool("save-config")
	if b {
		path, _ := arguments.String("<plist>")
		s, err := settingFromArguments(arguments)
		exitIfError("invalid settings", err)
		exitIfError("failed saving settings", s.Save(path))
		printResult(map[string]interface{}{"saved": path}, "saved "+path)
		return
	}

	b, _ = arguments.Bool("status")
	if b {
		status, err := fetchStatus(arguments)
		exitIfError("failed to get connector status", err)
		printStatus(status)
		return
	}

	b, _ = arguments.Bool("stop")
	if b {
		status, err := stopRemote(arguments)
		exitIfError("failed to stop connector", err)
		printStatus(status)
		return
	}

	b, _ = arguments.Bool("connect")
	if b {
		exitIfError("connect failed", runConnect(arguments))
		return
	}
}

func configureLogging(arguments docopt.Opts) {
	disableJSON, _ := arguments.Bool("--nojson")
	if disableJSON {
		JSONdisabled = true
		log.SetFormatter(&log.TextFormatter{})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}

	traceLevelEnabled, _ := arguments.Bool("--trace")
	if traceLevelEnabled {
		log.Info("Set Trace mode")
		log.SetLevel(log.TraceLevel)
		return
	}
	verboseLoggingEnabledLong, _ := arguments.Bool("--verbose")
	if verboseLoggingEnabledLong {
		log.Info("Set Debug mode")
		log.SetLevel(log.DebugLevel)
	}
}

func printVersion() {
	printResult(map[string]interface{}{"version": version}, version)
}

func printStatus(status conn.Status) {
	printResult(status, fmt.Sprintf("session: %s\nstate: %s\nrunning: %t\nrouting: %s\nlog: %d bytes",
		status.Session, status.State, status.Running, status.RoutingParam, status.LogBytes))
}

func printResult(data interface{}, human string) {
	if JSONdisabled {
		fmt.Println(human)
		return
	}
	fmt.Println(convertToJSONString(data))
}

func convertToJSONString(data interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		fmt.Println(err)
		return ""
	}
	return string(b)
}

func exitIfError(msg string, err error) {
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatalf(msg)
	}
}
