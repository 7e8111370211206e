//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillTree force-terminates pid and its children with taskkill /T.
// pid <= 0 is ignored.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort; the launcher kills the leader on its own as well.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is an int
}
