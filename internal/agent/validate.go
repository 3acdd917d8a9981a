// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import (
	"os"

	"github.com/dci-labs/dciagent/internal/credentials"
	"github.com/dci-labs/dciagent/internal/types"
)

// Validate checks a resolved configuration. The first failing check is
// reported, in this order: launcher, playbook, inventory, ansible config,
// then settings, hooks directory, env files and the DCI credentials file.
func Validate(v *Variant, cfg *Config) error {
	if cfg.Launcher == "" {
		if v.Container != nil {
			if cfg.ContainerRuntime != "" {
				return invalid("container_runtime", "%s not found in PATH", cfg.ContainerRuntime)
			}
			return invalid("container_runtime", "no supported container runtime found (podman or docker)")
		}
		return invalid("executable", "%s not found in PATH", cfg.Executable)
	}
	if cfg.Playbook == "" {
		return invalid(OptPlaybook, "no playbook given")
	}
	if !isFile(cfg.Playbook) {
		return invalid(OptPlaybook, "playbook %s does not exist", cfg.Playbook)
	}
	if !isFile(cfg.Inventory) && !isDir(cfg.Inventory) {
		return invalid(OptInventory, "inventory %s does not exist", cfg.Inventory)
	}
	if cfg.AnsibleConfig == "" {
		return invalid(OptAnsibleConfig, "no ansible config given")
	}
	if !isFile(cfg.AnsibleConfig) {
		return invalid(OptAnsibleConfig, "ansible config %s does not exist", cfg.AnsibleConfig)
	}

	if cfg.SettingsFile != "" && !isFile(cfg.SettingsFile) {
		return invalid(OptSettingsFile, "settings file %s does not exist", cfg.SettingsFile)
	}
	if cfg.HooksDir != "" && !isDir(cfg.HooksDir) {
		return invalid(OptHooksDir, "hooks directory %s does not exist", cfg.HooksDir)
	}
	for _, f := range cfg.EnvFiles {
		if !isFile(f) {
			return invalid(OptEnvFile, "env file %s does not exist", f)
		}
	}
	if v.Container != nil && cfg.Image == "" {
		return invalid(OptImage, "no container image given")
	}
	if v.Flavor == types.FlavorDCI {
		if cfg.AuthFile == "" {
			return invalid(OptAuthFile, "no credentials file given, use --auth-file or --config-dir")
		}
		if !isFile(cfg.AuthFile) {
			return invalid(OptAuthFile, "credentials file %s does not exist", cfg.AuthFile)
		}
		if err := credentials.CheckSyntax(cfg.AuthFile); err != nil {
			return &ValidationError{Field: OptAuthFile, Msg: "credentials file is not a valid shell script", Err: err}
		}
	}
	return nil
}

func isFile(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func isDir(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}
