// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/dci-labs/dciagent/internal/argspec"
	"github.com/dci-labs/dciagent/internal/types"
)

// Defaults are the class-level values a variant falls back to.
type Defaults struct {
	Executable    string
	ConfigDir     string
	Playbook      string
	Inventory     string
	AnsibleConfig string
}

// Hook is a side effect run around command execution.
type Hook func(r *Runner) error

// Variant is an agent assembled from strategies instead of a type hierarchy.
type Variant struct {
	Name     string
	Summary  string
	Flavor   string
	Defaults Defaults
	Schema   argspec.Schema
	// Env holds static variables added to the environment overlay.
	Env         map[string]string
	Resolve     Resolver
	Environment EnvBuilder
	Pre         Hook
	Post        Hook
	Container   *ContainerDefaults
}

func (v *Variant) resolve(cfg *Config) error {
	if v.Resolve == nil {
		return ResolveAnsible(v, cfg)
	}
	return v.Resolve(v, cfg)
}

func (v *Variant) environment(ctx context.Context, cfg *Config) (map[string]string, error) {
	if v.Environment == nil {
		return AnsibleEnvironment(ctx, v, cfg)
	}
	return v.Environment(ctx, v, cfg)
}

// Generic ansible defaults.
const (
	DefaultInventory     = "/etc/ansible/hosts"
	DefaultAnsibleConfig = "/etc/ansible/ansible.cfg"
)

// NewAnsibleVariant returns a plain ansible-playbook runner.
func NewAnsibleVariant(name, summary string, d Defaults) *Variant {
	if d.Inventory == "" {
		d.Inventory = DefaultInventory
	}
	if d.AnsibleConfig == "" {
		d.AnsibleConfig = DefaultAnsibleConfig
	}
	return &Variant{
		Name:        name,
		Summary:     summary,
		Flavor:      types.FlavorAnsible,
		Defaults:    d,
		Schema:      AnsibleSchema,
		Resolve:     ResolveAnsible,
		Environment: AnsibleEnvironment,
	}
}

// NewDCIVariant returns a runner that discovers its files under a DCI
// configuration directory, imports credentials and keeps job artifacts in a
// per-run temporary directory.
func NewDCIVariant(name, summary string, d Defaults) *Variant {
	v := NewAnsibleVariant(name, summary, d)
	v.Flavor = types.FlavorDCI
	v.Schema = DCISchema
	v.Resolve = ResolveDCI
	v.Environment = DCIEnvironment
	v.Pre = createTempDir
	v.Post = removeTempDir
	return v
}

// WithContainer returns a copy of v that runs inside c.Image.
func (v *Variant) WithContainer(c ContainerDefaults) *Variant {
	out := *v
	out.Container = &c
	out.Schema = mustExtend(v.Schema, ContainerSchema...)
	return &out
}

func createTempDir(r *Runner) error {
	dir := r.Config.TempDir
	if dir == "" {
		return nil
	}
	r.logger().Debug("creating job directory", "tempdir", dir)
	return os.MkdirAll(dir, 0o700)
}

func removeTempDir(r *Runner) error {
	dir := r.Config.TempDir
	if dir == "" {
		return nil
	}
	if r.Config.NoCleanup {
		r.Printer().Header("Skipping removal of temp directory: " + dir)
		return nil
	}
	return os.RemoveAll(dir)
}

// Builtins returns the agents shipped with the tool.
func Builtins() []*Variant {
	return []*Variant{
		NewAnsibleVariant("ansible", "Run any ansible playbook", Defaults{}),
		NewDCIVariant("openshift", "Run the DCI OpenShift agent", Defaults{
			ConfigDir:     "/etc/dci-openshift-agent",
			Playbook:      "/usr/share/dci-openshift-agent/dci-openshift-agent.yml",
			AnsibleConfig: "/usr/share/dci-openshift-agent/ansible.cfg",
		}),
		NewDCIVariant("rhel", "Run the DCI RHEL agent in a container", Defaults{
			ConfigDir:     "/etc/dci-rhel-agent",
			Playbook:      "/usr/share/dci-rhel-agent/dci-rhel-agent.yml",
			AnsibleConfig: "/usr/share/dci-rhel-agent/ansible.cfg",
		}).WithContainer(ContainerDefaults{Image: "quay.io/thekad/alpine-ansible:3"}),
	}
}

// BuiltinNames lists the names reserved by Builtins.
func BuiltinNames() []string {
	var names []string
	for _, v := range Builtins() {
		names = append(names, v.Name)
	}
	return names
}

// FromDefinition builds a variant from a user-defined agent.
func FromDefinition(def types.AgentDefinition) (*Variant, error) {
	d := Defaults{
		Executable:    def.Executable,
		ConfigDir:     def.ConfigDir,
		Playbook:      def.Playbook,
		Inventory:     def.Inventory,
		AnsibleConfig: def.AnsibleConfig,
	}
	summary := def.Summary
	if summary == "" {
		summary = fmt.Sprintf("Run the %s agent", def.Name)
	}

	var v *Variant
	switch def.Flavor {
	case types.FlavorDCI:
		v = NewDCIVariant(def.Name, summary, d)
	case types.FlavorAnsible, "":
		v = NewAnsibleVariant(def.Name, summary, d)
	default:
		return nil, fmt.Errorf("agent %q: unsupported flavor %q", def.Name, def.Flavor)
	}
	if len(def.Env) > 0 {
		v.Env = make(map[string]string, len(def.Env))
		for k, val := range def.Env {
			v.Env[k] = val
		}
	}
	if c := def.Container; c != nil {
		v = v.WithContainer(ContainerDefaults{
			Image:     c.Image,
			Runtime:   c.Runtime,
			Network:   c.Network,
			ExtraArgs: append([]string(nil), c.ExtraArgs...),
		})
	}
	return v, nil
}
