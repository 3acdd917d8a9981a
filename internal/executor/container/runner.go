// SPDX-License-Identifier: AGPL-3.0-or-later
package container

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Runtime represents a supported container runtime CLI.
type Runtime string

const (
	RuntimePodman Runtime = "podman"
	RuntimeDocker Runtime = "docker"
)

// DefaultNetwork is used when RunOptions.NetworkMode is empty. Playbooks
// reach their targets over the host network.
const DefaultNetwork = "host"

// Resolve locates the binary of the requested runtime, or of the preferred
// available one when requested is empty. It returns the runtime together with
// the absolute path of its CLI.
func Resolve(requested string, lookPath func(string) (string, error)) (Runtime, string, error) {
	if lookPath == nil {
		lookPath = func(cmd string) (string, error) {
			return execLookPath(cmd)
		}
	}
	requested = strings.TrimSpace(requested)
	if requested != "" {
		path, err := lookPath(requested)
		if err != nil {
			return "", "", fmt.Errorf("container runtime %q not found: %w", requested, err)
		}
		return Runtime(filepath.Base(requested)), path, nil
	}
	for _, rt := range []Runtime{RuntimePodman, RuntimeDocker} {
		if path, err := lookPath(string(rt)); err == nil {
			return rt, path, nil
		}
	}
	return "", "", fmt.Errorf("no supported container runtime found (podman or docker)")
}

// RunOptions encapsulates container execution parameters.
type RunOptions struct {
	// Binary is argv[0]; defaults to the runtime name.
	Binary  string
	Runtime Runtime
	Image   string
	Command []string
	// PassEnv lists variables forwarded by name only; values are taken from
	// the environment of the runtime CLI and never appear in argv.
	PassEnv     []string
	WorkDir     string
	Mounts      []Mount
	NetworkMode string
	Name        string
	ExtraArgs   []string
	Remove      bool
	Interactive bool
	ReadOnly    bool
}

// Mount describes a bind mount from host to container.
type Mount struct {
	Source      string
	Destination string
	ReadOnly    bool
	// Relabel adds the SELinux shared-content label (":z").
	Relabel bool
}

// BuildArgs builds container runtime arguments. The resulting vector starts
// with the runtime binary and ends with opts.Command.
func BuildArgs(opts RunOptions) ([]string, error) {
	if opts.Image == "" {
		return nil, fmt.Errorf("image is required")
	}
	if opts.Runtime == "" {
		return nil, fmt.Errorf("runtime is required")
	}
	binary := opts.Binary
	if binary == "" {
		binary = string(opts.Runtime)
	}

	args := []string{binary, "run"}
	if opts.Remove {
		args = append(args, "--rm")
	}
	if opts.Interactive {
		args = append(args, "-it")
	}
	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}

	args = append(args, "--security-opt=no-new-privileges")
	if opts.ReadOnly {
		args = append(args, "--read-only")
	}

	networkMode := opts.NetworkMode
	if networkMode == "" {
		networkMode = DefaultNetwork
	}
	args = append(args, "--network", networkMode)

	if opts.WorkDir != "" {
		args = append(args, "--workdir", opts.WorkDir)
	}

	for _, key := range opts.PassEnv {
		if key == "" || strings.Contains(key, "=") {
			return nil, fmt.Errorf("invalid environment name %q", key)
		}
		args = append(args, "--env", key)
	}

	for _, m := range opts.Mounts {
		if err := validateMount(m); err != nil {
			return nil, err
		}
		args = append(args, "--volume", mountSpec(m))
	}

	if len(opts.ExtraArgs) > 0 {
		args = append(args, opts.ExtraArgs...)
	}

	args = append(args, opts.Image)
	args = append(args, opts.Command...)
	return args, nil
}

func mountSpec(m Mount) string {
	opts := []string{}
	if m.ReadOnly {
		opts = append(opts, "ro")
	}
	if m.Relabel {
		opts = append(opts, "z")
	}
	spec := m.Source + ":" + m.Destination
	if len(opts) > 0 {
		spec += ":" + strings.Join(opts, ",")
	}
	return spec
}

func validateMount(m Mount) error {
	if m.Source == "" || m.Destination == "" {
		return fmt.Errorf("invalid mount: missing source or destination")
	}
	if !filepath.IsAbs(m.Destination) {
		return fmt.Errorf("invalid mount destination %q: must be absolute", m.Destination)
	}
	return nil
}

// SameDirMounts mounts the parent directory of every path (or the path itself
// when isDir reports true) at the same location inside the container.
// Duplicates and nested directories are collapsed; output is sorted.
func SameDirMounts(paths []string, isDir func(string) bool) []Mount {
	dirs := map[string]struct{}{}
	for _, p := range paths {
		if p == "" || !filepath.IsAbs(p) {
			continue
		}
		d := filepath.Clean(p)
		if isDir == nil || !isDir(d) {
			d = filepath.Dir(d)
		}
		dirs[d] = struct{}{}
	}
	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	mounts := make([]Mount, 0, len(sorted))
	for _, d := range sorted {
		if d == string(filepath.Separator) || covered(mounts, d) {
			continue
		}
		mounts = append(mounts, Mount{Source: d, Destination: d, Relabel: true})
	}
	return mounts
}

func covered(mounts []Mount, dir string) bool {
	for _, m := range mounts {
		if strings.HasPrefix(dir, m.Source+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// EnvNames returns the sorted keys of env.
func EnvNames(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k := range env {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Name returns a unique container name derived from the agent name.
func Name(agent string) string {
	return "dci-" + sanitizeName(agent) + "-" + uuid.NewString()[:8]
}

func sanitizeName(id string) string {
	if id == "" {
		return "agent"
	}
	lower := strings.ToLower(id)
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "agent"
	}
	if len(out) > 48 {
		out = out[:48]
	}
	return out
}

// execLookPath is declared for test substitution.
var execLookPath = func(file string) (string, error) {
	return exec.LookPath(file)
}
