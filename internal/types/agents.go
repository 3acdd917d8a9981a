// SPDX-License-Identifier: AGPL-3.0-or-later
package types

// Flavors accepted in AgentDefinition.Flavor.
const (
	FlavorAnsible = "ansible"
	FlavorDCI     = "dci"
)

// AgentsFile is the document stored in agents.yaml.
type AgentsFile struct {
	Agents []AgentDefinition `yaml:"agents"`
}

// AgentDefinition declares a user-defined agent variant. Empty fields fall
// back to the defaults of the flavor.
type AgentDefinition struct {
	Name          string            `yaml:"name"`
	Summary       string            `yaml:"summary,omitempty"`
	Flavor        string            `yaml:"flavor,omitempty"`
	Executable    string            `yaml:"executable,omitempty"`
	Playbook      string            `yaml:"playbook,omitempty"`
	ConfigDir     string            `yaml:"config_dir,omitempty"`
	AnsibleConfig string            `yaml:"ansible_config,omitempty"`
	Inventory     string            `yaml:"inventory,omitempty"`
	Env           map[string]string `yaml:"env,omitempty"`
	Container     *ContainerConfig  `yaml:"container,omitempty"`
}

// ContainerConfig captures container-specific execution settings.
type ContainerConfig struct {
	Image     string   `yaml:"image"`
	Runtime   string   `yaml:"runtime,omitempty"`
	Network   string   `yaml:"network,omitempty"`
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}
