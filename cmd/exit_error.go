// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"errors"
	"fmt"

	"github.com/dci-labs/dciagent/internal/agent"
	"github.com/dci-labs/dciagent/internal/argspec"
)

// Process exit codes besides the child's own.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitValidation = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError marks command-line mistakes.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exitCode maps an error returned by the command tree to a process exit code.
// The second result reports whether the error should be printed.
func exitCode(err error) (int, bool) {
	if err == nil {
		return ExitOK, false
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, exitErr.Err != nil
	}
	var usage *usageError
	switch {
	case errors.As(err, &usage), errors.Is(err, argspec.ErrArgument), errors.Is(err, argspec.ErrEnvValue):
		return ExitUsage, true
	case errors.Is(err, agent.ErrValidation):
		return ExitValidation, true
	}
	return ExitFailure, true
}
