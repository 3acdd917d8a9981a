//go:build !unix

package executor

import "os"

func exitCode(ps *os.ProcessState) int {
	return ps.ExitCode()
}
