//go:build !unix

package services

import "os/exec"

func killProcessGroupOnCancel(cmd *exec.Cmd) {}
