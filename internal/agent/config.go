// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import "github.com/dci-labs/dciagent/internal/argspec"

// Option destinations shared by the schemas and Config.
const (
	OptConfigDir        = "config_dir"
	OptPrefix           = "prefix"
	OptSettingsFile     = "settings_file"
	OptAuthFile         = "auth_file"
	OptHooksDir         = "hooks_dir"
	OptVerbosity        = "verbosity"
	OptDryRun           = "dry_run"
	OptNoValidation     = "no_validation"
	OptEnvFile          = "env_file"
	OptTempRoot         = "tmpdir"
	OptAnsibleConfig    = "ansible_config"
	OptLimit            = "limit"
	OptTags             = "tags"
	OptSkipTags         = "skip_tags"
	OptExtraArgs        = "extra_args"
	OptExtraVars        = "extra_vars"
	OptInventory        = "inventory"
	OptPlaybook         = "playbook"
	OptNoCleanup        = "no_cleanup"
	OptImage            = "image"
	OptContainerRuntime = "container_runtime"
	OptContainerArgs    = "container_args"
)

// GlobalSchema declares the options shared by every agent.
var GlobalSchema = argspec.MustSchema(
	argspec.MustNew(argspec.Spec{
		Name: OptConfigDir, Short: "C", Long: "config-dir", Env: "DCI_CONFIG_DIR", Metavar: "DIR",
		Help: "base directory for auto-discovered agent configuration",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptPrefix, Short: "P", Long: "prefix", Env: "DCI_PREFIX",
		Help: "prefix all auto-discovered settings with this string",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptSettingsFile, Short: "S", Long: "settings-file", Env: "DCI_SETTINGS_FILE", Metavar: "FILE",
		Help: "override the agent settings file i.e. settings.yml",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptAuthFile, Short: "A", Long: "auth-file", Env: "DCI_AUTH_FILE", Metavar: "FILE",
		Help: "override the DCI credentials file i.e. dcirc.sh",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptHooksDir, Short: "H", Long: "hooks-dir", Env: "DCI_HOOKS_DIR", Metavar: "DIR",
		Help: "directory holding the agent hooks, passed as hooks_dir",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptVerbosity, Short: "v", Long: "verbosity", Action: argspec.Count, Env: "DCI_VERBOSITY",
		Help: "increase output verbosity, repeatable",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptDryRun, Long: "dry-run", Action: argspec.Flag, Env: "DCI_DRY_RUN",
		Help: "do not run the command line, only print it",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptNoValidation, Long: "no-validation", Action: argspec.Flag, Env: "DCI_NO_VALIDATION",
		Help: "skip validation of the resolved configuration",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptEnvFile, Long: "env-file", Action: argspec.Append, Env: "DCI_ENV_FILE", Metavar: "FILE",
		Help: "dotenv file whose variables are exported to the playbook, repeatable",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptTempRoot, Long: "tmpdir", Env: "DCI_TMPDIR", Metavar: "DIR",
		Help: "parent directory of per-run temp directories",
	}),
)

// AnsibleSchema declares the options of every ansible-playbook based agent.
var AnsibleSchema = argspec.MustSchema(
	argspec.MustNew(argspec.Spec{
		Name: OptAnsibleConfig, Short: "c", Long: "ansible-config", Env: "ANSIBLE_CONFIG", Metavar: "FILE",
		Help: "path to the ansible.cfg to use",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptLimit, Short: "l", Long: "limit", Env: "ANSIBLE_LIMIT",
		Help: "further limit selected hosts to an additional pattern",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptTags, Short: "t", Long: "tags", Env: "ANSIBLE_TAGS",
		Help: "only run plays and tasks tagged with these values",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptSkipTags, Long: "skip-tags", Env: "ANSIBLE_SKIP_TAGS",
		Help: "only run plays and tasks whose tags do not match these values",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptExtraArgs, Long: "ansible-args", Env: "ANSIBLE_ARGS", Metavar: "ARGS",
		Help: "extra arguments appended verbatim to ansible-playbook",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptExtraVars, Short: "e", Long: "extra-vars", Action: argspec.Append, Env: "ANSIBLE_EXTRA_VARS", Metavar: "VARS",
		Help: "set additional variables as key=value or @file, repeatable",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptInventory, Short: "i", Long: "inventory", Env: "ANSIBLE_INVENTORY", Metavar: "FILE",
		Help: "override the inventory file",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptPlaybook, NArgs: "?", Env: "ANSIBLE_PLAYBOOK", Metavar: "PLAYBOOK",
		Help: "playbook to run",
	}),
)

// DCISchema extends AnsibleSchema with the DCI bookkeeping options.
var DCISchema = mustExtend(AnsibleSchema,
	argspec.MustNew(argspec.Spec{
		Name: OptNoCleanup, Long: "no-cleanup", Action: argspec.Flag, Env: "DCI_NO_CLEANUP",
		Help: "keep the temporary job directory after the run",
	}),
)

// ContainerSchema holds the options added to containerized agents.
var ContainerSchema = argspec.MustSchema(
	argspec.MustNew(argspec.Spec{
		Name: OptImage, Long: "image", Env: "DCI_CONTAINER_IMAGE",
		Help: "container image running ansible-playbook",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptContainerRuntime, Long: "container-runtime", Env: "DCI_CONTAINER_RUNTIME", Metavar: "CLI",
		Help: "container runtime to use, podman is preferred over docker",
	}),
	argspec.MustNew(argspec.Spec{
		Name: OptContainerArgs, Long: "container-args", Env: "DCI_CONTAINER_ARGS", Metavar: "ARGS",
		Help: "extra arguments appended verbatim to the container run command",
	}),
)

func mustExtend(base argspec.Schema, specs ...argspec.Spec) argspec.Schema {
	s, err := base.With(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Config is the per-run configuration of an agent. It is filled from parsed
// option values, completed by the variant's resolver and treated as read-only
// once validated.
type Config struct {
	ConfigDir     string
	Prefix        string
	Playbook      string
	Inventory     string
	SettingsFile  string
	AuthFile      string
	HooksDir      string
	AnsibleConfig string
	Verbosity     int
	DryRun        bool
	NoValidation  bool
	Limit         string
	Tags          string
	SkipTags      string
	ExtraArgs     string
	ExtraVars     []string
	NoCleanup     bool
	EnvFiles      []string
	TempRoot      string

	// Set by resolution.
	Executable string
	// Launcher is the program actually spawned: the executable itself, or
	// the container runtime CLI for containerized agents.
	Launcher         string
	TempDir          string
	Image            string
	ContainerRuntime string
	ContainerArgs    string
}

// FromValues copies parsed option values into a fresh Config.
func FromValues(v argspec.Values) *Config {
	return &Config{
		ConfigDir:        v.String(OptConfigDir),
		Prefix:           v.String(OptPrefix),
		Playbook:         v.String(OptPlaybook),
		Inventory:        v.String(OptInventory),
		SettingsFile:     v.String(OptSettingsFile),
		AuthFile:         v.String(OptAuthFile),
		HooksDir:         v.String(OptHooksDir),
		AnsibleConfig:    v.String(OptAnsibleConfig),
		Verbosity:        v.Int(OptVerbosity),
		DryRun:           v.Bool(OptDryRun),
		NoValidation:     v.Bool(OptNoValidation),
		Limit:            v.String(OptLimit),
		Tags:             v.String(OptTags),
		SkipTags:         v.String(OptSkipTags),
		ExtraArgs:        v.String(OptExtraArgs),
		ExtraVars:        v.Strings(OptExtraVars),
		NoCleanup:        v.Bool(OptNoCleanup),
		EnvFiles:         v.Strings(OptEnvFile),
		TempRoot:         v.String(OptTempRoot),
		Image:            v.String(OptImage),
		ContainerRuntime: v.String(OptContainerRuntime),
		ContainerArgs:    v.String(OptContainerArgs),
	}
}
