// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import (
	"os/exec"
	"path/filepath"

	"github.com/dci-labs/dciagent/internal/executor/container"
	"github.com/dci-labs/dciagent/internal/paths"
	"github.com/google/uuid"
)

// Conventional file names looked up under the configuration directory,
// after the prefix.
const (
	AuthFileName      = "dcirc.sh"
	InventoryFileName = "hosts"
	SettingsFileName  = "settings.yml"
	JobIDFileName     = "dci.job"
	AnsibleLogName    = "ansible.log"
)

// DefaultExecutable is run when a variant does not name one.
const DefaultExecutable = "ansible-playbook"

// lookPath is declared for test substitution.
var lookPath = exec.LookPath

// Resolver fills the unset fields of cfg from conventions and the variant's
// defaults. Values already present always win.
type Resolver func(v *Variant, cfg *Config) error

// ResolveAnsible applies the generic ansible defaults (playbook, inventory,
// ansible.cfg), canonicalizes every path and resolves the executable.
func ResolveAnsible(v *Variant, cfg *Config) error {
	d := v.Defaults
	if cfg.Playbook == "" {
		cfg.Playbook = d.Playbook
	}
	if cfg.Inventory == "" {
		cfg.Inventory = d.Inventory
	}
	if cfg.AnsibleConfig == "" {
		cfg.AnsibleConfig = d.AnsibleConfig
	}
	for _, p := range []*string{&cfg.Playbook, &cfg.Inventory, &cfg.AnsibleConfig, &cfg.HooksDir} {
		*p = canonical(*p)
	}
	for i, f := range cfg.EnvFiles {
		cfg.EnvFiles[i] = canonical(f)
	}
	return resolveLauncher(v, cfg)
}

// ResolveDCI derives the auth, inventory and settings files from the
// configuration directory and prefix, allocates the job directory and
// appends the DCI extra-vars before delegating to ResolveAnsible.
func ResolveDCI(v *Variant, cfg *Config) error {
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = v.Defaults.ConfigDir
	}
	if cfg.ConfigDir != "" {
		if cfg.AuthFile == "" {
			cfg.AuthFile = filepath.Join(cfg.ConfigDir, cfg.Prefix+AuthFileName)
		}
		if cfg.Inventory == "" {
			cfg.Inventory = filepath.Join(cfg.ConfigDir, cfg.Prefix+InventoryFileName)
		}
		if cfg.SettingsFile == "" {
			cfg.SettingsFile = filepath.Join(cfg.ConfigDir, cfg.Prefix+SettingsFileName)
		}
	}
	for _, p := range []*string{&cfg.ConfigDir, &cfg.AuthFile, &cfg.Inventory, &cfg.SettingsFile, &cfg.HooksDir} {
		*p = canonical(*p)
	}

	if cfg.TempDir == "" {
		root := cfg.TempRoot
		if root == "" {
			root = paths.TempRoot()
		}
		cfg.TempDir = filepath.Join(root, "dci-"+uuid.NewString())
	}
	cfg.ExtraVars = append(cfg.ExtraVars, "JOB_ID_FILE="+filepath.Join(cfg.TempDir, JobIDFileName))
	if cfg.SettingsFile != "" {
		cfg.ExtraVars = append(cfg.ExtraVars, "@"+cfg.SettingsFile)
	}
	if cfg.HooksDir != "" {
		cfg.ExtraVars = append(cfg.ExtraVars, "hooks_dir="+cfg.HooksDir)
	}
	return ResolveAnsible(v, cfg)
}

// resolveLauncher looks the executable up in PATH, or the container runtime
// for containerized variants. A miss leaves Launcher empty for validation to
// report.
func resolveLauncher(v *Variant, cfg *Config) error {
	exe := v.Defaults.Executable
	if exe == "" {
		exe = DefaultExecutable
	}
	if v.Container == nil {
		cfg.Executable = exe
		cfg.Launcher = ""
		if path, err := lookPath(exe); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			cfg.Executable = path
			cfg.Launcher = path
		}
		return nil
	}

	cfg.Executable = exe
	if cfg.Image == "" {
		cfg.Image = v.Container.Image
	}
	requested := cfg.ContainerRuntime
	if requested == "" {
		requested = v.Container.Runtime
	}
	rt, path, err := container.Resolve(requested, lookPath)
	if err != nil {
		cfg.ContainerRuntime = requested
		cfg.Launcher = ""
		return nil
	}
	cfg.ContainerRuntime = string(rt)
	cfg.Launcher = path
	return nil
}

// canonical makes p absolute and resolves symlinks when the target exists.
func canonical(p string) string {
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
