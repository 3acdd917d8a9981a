// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dci-labs/dciagent/internal/envscope"
	"github.com/dci-labs/dciagent/internal/executor"
	"github.com/dci-labs/dciagent/internal/printer"
)

// ExecFunc spawns argv and returns its exit code.
type ExecFunc func(ctx context.Context, argv []string, opts executor.Options) (int, error)

// Runner drives one agent run: resolve, validate, pre-hook, build the command
// and environment, execute or print, post-hook.
type Runner struct {
	Variant *Variant
	Config  *Config
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	// Exec defaults to executor.Run.
	Exec ExecFunc

	printer *printer.Printer
}

// Printer returns the console printer bound to Stdout.
func (r *Runner) Printer() *printer.Printer {
	if r.printer == nil {
		r.printer = printer.New(r.stdout())
	}
	return r.printer
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// Run executes the agent and returns the exit code of the child process, or
// 0 for a dry run. A non-zero child exit is not an error. The post-hook runs
// on every path once the pre-hook has been entered.
func (r *Runner) Run(ctx context.Context) (rc int, err error) {
	v, cfg, log := r.Variant, r.Config, r.logger().With("agent", r.Variant.Name)

	if err := v.resolve(cfg); err != nil {
		return -1, err
	}
	log.Debug("resolved configuration",
		"executable", cfg.Executable,
		"launcher", cfg.Launcher,
		"playbook", cfg.Playbook,
		"inventory", cfg.Inventory,
		"ansible_config", cfg.AnsibleConfig,
		"config_dir", cfg.ConfigDir,
		"tempdir", cfg.TempDir,
	)

	if cfg.NoValidation {
		log.Info("skipping validation")
	} else if err := Validate(v, cfg); err != nil {
		return -1, err
	}

	if v.Post != nil {
		defer func() {
			if perr := v.Post(r); perr != nil {
				log.Warn("post-run hook failed", "err", perr)
				if err == nil {
					err = fmt.Errorf("post-run: %w", perr)
				}
			}
		}()
	}
	if v.Pre != nil {
		if err := v.Pre(r); err != nil {
			return -1, fmt.Errorf("pre-run: %w", err)
		}
	}

	argv, err := BuildCommand(cfg)
	if err != nil {
		return -1, err
	}
	env, err := v.environment(ctx, cfg)
	if err != nil {
		return -1, err
	}
	if v.Container != nil {
		if argv, err = wrapContainer(v, cfg, env, argv); err != nil {
			return -1, err
		}
	}

	if cfg.Verbosity > 0 && len(env) > 0 {
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		r.Printer().Environment("Running with the following extra environment:", keys, env)
	}

	if cfg.DryRun {
		r.Printer().Section("Dry-run mode, should execute the command:", func(w io.Writer) {
			fmt.Fprintln(w, strings.Join(argv, " \\\n"))
		})
		return 0, nil
	}
	if len(argv) == 0 {
		return 0, nil
	}

	restore, err := envscope.Apply(env)
	if err != nil {
		return -1, err
	}
	defer restore()

	run := r.Exec
	if run == nil {
		run = executor.Run
	}
	rc, err = run(ctx, argv, executor.Options{Env: env, Stdout: r.stdout(), Stderr: r.stderr(), Logger: log})
	if err != nil {
		return -1, err
	}
	log.Info("agent finished", "rc", rc)
	return rc, nil
}
