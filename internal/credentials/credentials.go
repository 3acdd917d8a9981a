// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credentials imports DCI credentials from a shell-sourced file such
// as dcirc.sh.
package credentials

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Prefix is the name prefix a variable needs to be imported.
const Prefix = "DCI_"

// Shell runs the sourcing script; tests may point it elsewhere.
var Shell = "/bin/sh"

// sourceScript fails only when the file cannot be read. The status of the
// file's last command is ignored, and `export -p` prints every exported
// variable quoted for reuse as shell input.
const sourceScript = `[ -r "$0" ] || { echo "cannot read $0" >&2; exit 1; }
. "$0"
export -p`

// Load sources path with the shell in an empty environment and returns the
// DCI_* variables it exports. It spawns exactly one process.
func Load(ctx context.Context, path string) (map[string]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// "." searches PATH for names without a slash.
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, Shell, "-c", sourceScript, path)
	// A non-nil empty Env keeps the caller's variables out of the capture.
	cmd.Env = []string{}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("source credentials %s: %w: %s", path, err, msg)
		}
		return nil, fmt.Errorf("source credentials %s: %w", path, err)
	}
	creds, err := Parse(&stdout)
	if err != nil {
		return nil, fmt.Errorf("source credentials %s: %w", path, err)
	}
	return creds, nil
}

// Parse reads the `export -p` listing of a shell (`export K='v'` from POSIX
// shells, `declare -x K="v"` from bash) and keeps the variables starting
// with Prefix. Quoted values may span several lines.
func Parse(r io.Reader) (map[string]string, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(r, "export -p")
	if err != nil {
		return nil, fmt.Errorf("parse exported variables: %w", err)
	}
	out := make(map[string]string)
	var walkErr error
	syntax.Walk(file, func(node syntax.Node) bool {
		decl, ok := node.(*syntax.DeclClause)
		if !ok || walkErr != nil {
			return walkErr == nil
		}
		for _, as := range decl.Args {
			if as.Name == nil || as.Naked || as.Array != nil || !strings.HasPrefix(as.Name.Value, Prefix) {
				continue
			}
			val := ""
			if as.Value != nil {
				if val, walkErr = expand.Literal(nil, as.Value); walkErr != nil {
					walkErr = fmt.Errorf("value of %s: %w", as.Name.Value, walkErr)
					return false
				}
			}
			out[as.Name.Value] = val
		}
		return false
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// CheckSyntax parses the file as a POSIX shell script without running it.
func CheckSyntax(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(f, path); err != nil {
		return err
	}
	return nil
}
