//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid.
// pid <= 0 is ignored: -0 would address the caller's own group.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort; the launcher kills the leader on its own as well.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
