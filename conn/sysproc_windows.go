//go:build windows

package conn

import (
	"os"
	"syscall"
)

func createSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

func killProcess(p *os.Process) error {
	return p.Kill()
}

// there is no su on windows, the routing script always runs through the elevation prefix
func isPrivileged() bool {
	return false
}
