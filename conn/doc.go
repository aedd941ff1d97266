// Package conn supervises an external DNS tunnel client (iodine) and turns its unstructured output into a
// connection lifecycle.
//
// A connection attempt is a two-step process:
//
// - Spawning the tunnel binary and waiting until the process handle has been handed over
//
// - Polling the merged stdout/stderr of the process until the tunnel reports that it is set up
//
// # Supervision
//
// The tunnel binary is started on its own goroutine (the supervisor). The supervisor publishes the process handle
// through a single-use readiness gate, then blocks on the process exit and clears the running flag once the
// process is gone and its output is buffered. The next poll picks up the remaining output and marks the connection
// as disconnected. Stop kills the process (and its process group on unix) and joins the supervisor.
//
// # Polling
//
// The poller is a unit of work that is run repeatedly by a Scheduler. Each run drains whatever output the process
// produced since the last run, appends it to the cumulative log and classifies the whole log. The first time the
// log contains "setup complete, " the connection becomes Connected and the routing script is run once with
// either the direct endpoint that iodine reported ("raw traffic directly to <ip>") or "indirect".
// Before the tunnel is up the poller runs every 100ms, afterwards every second.
//
// The endpoint is taken from the output of the tunnel process and ends up on the command line of a privileged
// shell invocation, so it is only accepted when it consists of letters, digits, dots and underscores.
package conn
