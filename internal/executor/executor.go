// SPDX-License-Identifier: AGPL-3.0-or-later
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strings"
	"syscall"
)

// ErrEmptyCommand is returned when Run is given no argument vector.
var ErrEmptyCommand = errors.New("empty command")

// Options controls how a child process is attached to the caller.
type Options struct {
	// Env, when non-nil, is overlaid on the ambient environment of the child.
	// Nil inherits the ambient environment unchanged.
	Env    map[string]string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Run starts argv[0] with the literal argument vector argv[1:] (no shell
// interpretation) and blocks until it exits. The caller survives interrupt
// and terminate signals received meanwhile so it can run its cleanup.
// SIGTERM is forwarded to the child. SIGINT is not, since the terminal
// already delivered it to the child's process group.
//
// The returned code is the child's exit status, or 128+N when it was killed
// by signal N. A non-zero exit is not an error; err is set only when the
// process could not be started or waited for.
func Run(ctx context.Context, argv []string, opts Options) (int, error) {
	if len(argv) == 0 {
		return -1, ErrEmptyCommand
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if opts.Env != nil {
		cmd.Env = mergeEnv(os.Environ(), opts.Env)
	}
	cmd.Stdin = opts.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	// Registered before Start so no signal slips in between.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	logger.Debug("starting child process", "executable", argv[0], "argc", len(argv))
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", argv[0], err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				// Ctrl-C already reached the child through its process group.
				if sig == os.Interrupt {
					logger.Info("interrupt received, waiting for child", "pid", cmd.Process.Pid)
					continue
				}
				logger.Info("forwarding signal to child", "signal", sig.String(), "pid", cmd.Process.Pid)
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)

	if err == nil {
		logger.Debug("child process exited", "rc", 0)
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitCode(exitErr.ProcessState)
		logger.Debug("child process exited", "rc", code)
		return code, nil
	}
	return -1, fmt.Errorf("wait %s: %w", argv[0], err)
}

// mergeEnv returns env with every key of overlay set, in sorted key order.
func mergeEnv(env []string, overlay map[string]string) []string {
	out := append([]string(nil), env...)
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = upsertEnv(out, k, overlay[k])
	}
	return out
}

func upsertEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
