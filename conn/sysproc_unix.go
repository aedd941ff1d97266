//go:build !windows

package conn

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// The tunnel gets its own process group, so that killing it also takes down anything it forked.
func createSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func killProcess(p *os.Process) error {
	err := unix.Kill(-p.Pid, unix.SIGKILL)
	if err == unix.ESRCH {
		// group leader is gone already, make sure the process itself is too
		return p.Kill()
	}
	return err
}

func isPrivileged() bool {
	return unix.Geteuid() == 0
}
