// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// BuildCommand assembles the ansible-playbook argument vector. The executable
// is always the first token and the playbook the last. Scalars interpolated
// as a single token are shell-quoted; ExtraArgs is split into several tokens
// because it may carry multiple flags.
func BuildCommand(cfg *Config) ([]string, error) {
	if cfg.Executable == "" {
		return nil, fmt.Errorf("no executable to run")
	}
	argv := []string{cfg.Executable, "--inventory", cfg.Inventory}
	if cfg.Limit != "" {
		argv = append(argv, "--limit", shellquote.Join(cfg.Limit))
	}
	if cfg.Tags != "" {
		argv = append(argv, "--tags", shellquote.Join(cfg.Tags))
	}
	if cfg.SkipTags != "" {
		argv = append(argv, "--skip-tags", shellquote.Join(cfg.SkipTags))
	}
	for _, ev := range cfg.ExtraVars {
		argv = append(argv, "--extra-vars", shellquote.Join(ev))
	}
	if cfg.ExtraArgs != "" {
		extra, err := shellquote.Split(cfg.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("split ansible args %q: %w", cfg.ExtraArgs, err)
		}
		argv = append(argv, extra...)
	}
	if cfg.Verbosity > 0 {
		argv = append(argv, "-"+strings.Repeat("v", cfg.Verbosity))
	}
	return append(argv, cfg.Playbook), nil
}
