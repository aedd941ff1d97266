package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airportinternet/airport/conn"
)

// FetchStatus asks the connector API listening on port for its status.
func FetchStatus(port int) (conn.Status, error) {
	c := http.Client{
		Timeout: 5 * time.Second,
	}
	res, err := c.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/status", port))
	if err != nil {
		return conn.Status{}, fmt.Errorf("FetchStatus: failed to get status: %w", err)
	}
	return decodeStatus(res)
}

// StopRemote asks the connector API listening on port to stop iodine. The call returns once the process is gone.
func StopRemote(port int) (conn.Status, error) {
	c := http.Client{
		Timeout: 30 * time.Second,
	}
	res, err := c.Post(fmt.Sprintf("http://127.0.0.1:%d/api/v1/stop", port), "application/json", nil)
	if err != nil {
		return conn.Status{}, fmt.Errorf("StopRemote: failed to call stop: %w", err)
	}
	return decodeStatus(res)
}

func decodeStatus(res *http.Response) (conn.Status, error) {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return conn.Status{}, fmt.Errorf("failed to read body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return conn.Status{}, fmt.Errorf("unexpected status %d: %s", res.StatusCode, string(body))
	}
	var status conn.Status
	err = json.Unmarshal(body, &status)
	if err != nil {
		return conn.Status{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return status, nil
}
