// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dci-labs/dciagent/internal/executor/container"
	"github.com/kballard/go-shellquote"
	"golang.org/x/term"
)

// ContainerDefaults configures a containerized variant.
type ContainerDefaults struct {
	Image     string
	Runtime   string
	Network   string
	ExtraArgs []string
}

// stdinIsTerminal is declared for test substitution.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// wrapContainer runs argv inside the variant's image. Every directory holding
// a resolved path is mounted at the same location so argv is unchanged, and
// environment values are forwarded by name only.
func wrapContainer(v *Variant, cfg *Config, env map[string]string, argv []string) ([]string, error) {
	extra := append([]string(nil), v.Container.ExtraArgs...)
	if cfg.ContainerArgs != "" {
		more, err := shellquote.Split(cfg.ContainerArgs)
		if err != nil {
			return nil, fmt.Errorf("split container args %q: %w", cfg.ContainerArgs, err)
		}
		extra = append(extra, more...)
	}

	workdir := ""
	if cfg.Playbook != "" {
		workdir = filepath.Dir(cfg.Playbook)
	}
	mounts := container.SameDirMounts([]string{
		cfg.ConfigDir,
		cfg.Playbook,
		cfg.Inventory,
		cfg.AnsibleConfig,
		cfg.SettingsFile,
		cfg.HooksDir,
		cfg.TempDir,
	}, isDir)

	return container.BuildArgs(container.RunOptions{
		Binary:      cfg.Launcher,
		Runtime:     container.Runtime(cfg.ContainerRuntime),
		Image:       cfg.Image,
		Command:     argv,
		PassEnv:     container.EnvNames(env),
		WorkDir:     workdir,
		Mounts:      mounts,
		NetworkMode: v.Container.Network,
		Name:        container.Name(v.Name),
		ExtraArgs:   extra,
		Remove:      true,
		Interactive: stdinIsTerminal(),
	})
}
