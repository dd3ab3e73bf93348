//go:build unix

package services

import (
	"os/exec"
	"syscall"
)

// killProcessGroupOnCancel starts the script in its own process group and
// kills the whole group when the context ends, so children that inherited
// stdout cannot keep Wait blocked after cancellation.
func killProcessGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
