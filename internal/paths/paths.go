// SPDX-License-Identifier: AGPL-3.0-or-later

// Package paths centralises the locations dci-agent-ctl reads from and
// writes to outside of an agent's own configuration directory.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName      = "dci-agent-ctl"
	agentsFileName  = "agents.yaml"
	envAgentsFile   = "DCI_AGENTS_FILE"
	envTmpDir       = "DCI_TMPDIR"
	envXDGConfig    = "XDG_CONFIG_HOME"
	envAppData      = "APPDATA"
	windowsRoaming  = "Roaming"
	windowsAppDataD = "AppData"
)

// ConfigDir returns the directory holding user-level settings.
// Order of precedence:
//  1. Platform defaults:
//     * POSIX: $XDG_CONFIG_HOME/dci-agent-ctl, or ~/.config/dci-agent-ctl
//     * Windows: %APPDATA%\dci-agent-ctl
//  2. Fallback: ./dci-agent-ctl in the working directory.
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		if base := os.Getenv(envAppData); base != "" {
			return filepath.Join(base, appDirName)
		}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, windowsAppDataD, windowsRoaming, appDirName)
		}
	}

	if xdg := os.Getenv(envXDGConfig); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", appDirName)
	}

	if cwd, err := os.Getwd(); err == nil && cwd != "" {
		return filepath.Join(cwd, appDirName)
	}
	return appDirName
}

// AgentsFile returns the path of the user-defined agents file:
// $DCI_AGENTS_FILE when set, else agents.yaml inside ConfigDir.
func AgentsFile() string {
	if p := os.Getenv(envAgentsFile); p != "" {
		return filepath.Clean(p)
	}
	return filepath.Join(ConfigDir(), agentsFileName)
}

// TempRoot returns the parent directory of per-run temp directories when no
// --tmpdir is given: $DCI_TMPDIR, then the OS temp dir.
func TempRoot() string {
	if dir := os.Getenv(envTmpDir); dir != "" {
		return filepath.Clean(dir)
	}
	return os.TempDir()
}
