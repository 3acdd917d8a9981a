package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dci-labs/dciagent/internal/argspec"
	"github.com/dci-labs/dciagent/internal/executor"
	"github.com/spf13/pflag"
)

// fixture is a DCI configuration directory with every conventional file.
type fixture struct {
	root      string
	configDir string
	playbook  string
	ansible   string
	inventory string
	settings  string
	authFile  string
	exe       string
}

func touch(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return canonical(path)
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{root: canonical(root)}
	f.configDir = filepath.Join(f.root, "etc")
	f.playbook = touch(t, filepath.Join(f.root, "share", "agent.yml"), "- hosts: all\n")
	f.ansible = touch(t, filepath.Join(f.root, "share", "ansible.cfg"), "[defaults]\n")
	f.inventory = touch(t, filepath.Join(f.configDir, "hosts"), "localhost\n")
	f.settings = touch(t, filepath.Join(f.configDir, "settings.yml"), "topic: OCP-4.16\n")
	f.authFile = touch(t, filepath.Join(f.configDir, "dcirc.sh"), "export DCI_CLIENT_ID=remoteci/1\nexport DCI_API_SECRET=s3cr3t\n")
	f.exe = filepath.Join(f.root, "bin", "ansible-playbook")
	touch(t, f.exe, "#!/bin/sh\nexit 0\n")
	if err := os.Chmod(f.exe, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DCI_TMPDIR", filepath.Join(f.root, "tmp"))
	if err := os.MkdirAll(filepath.Join(f.root, "tmp"), 0o755); err != nil {
		t.Fatal(err)
	}
	stubLookPath(t, map[string]string{"ansible-playbook": f.exe})
	return f
}

func (f fixture) dciVariant() *Variant {
	return NewDCIVariant("test", "test agent", Defaults{
		ConfigDir:     f.configDir,
		Playbook:      f.playbook,
		AnsibleConfig: f.ansible,
	})
}

func stubLookPath(t *testing.T, known map[string]string) {
	t.Helper()
	prev := lookPath
	lookPath = func(file string) (string, error) {
		if p, ok := known[file]; ok {
			return p, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
	t.Cleanup(func() { lookPath = prev })
}

func stubCredentials(t *testing.T, creds map[string]string) *int {
	t.Helper()
	calls := 0
	prev := loadCredentials
	loadCredentials = func(context.Context, string) (map[string]string, error) {
		calls++
		return creds, nil
	}
	t.Cleanup(func() { loadCredentials = prev })
	return &calls
}

// parse renders the global and agent schemas on a flag set, parses args and
// returns the loaded configuration, the way the CLI does.
func parse(t *testing.T, v *Variant, args ...string) *Config {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := errors.Join(GlobalSchema.Attach(fs), v.Schema.Attach(fs)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	vals := argspec.Values{}
	vals.Merge(GlobalSchema.Load(fs, nil))
	vals.Merge(v.Schema.Load(fs, fs.Args()))
	return FromValues(vals)
}

// recorder is an ExecFunc that records spawns instead of running them.
type recorder struct {
	calls int
	argv  []string
	env   map[string]string
	opts  executor.Options
	rc    int
	err   error
	check func()
}

func (r *recorder) exec(_ context.Context, argv []string, opts executor.Options) (int, error) {
	r.calls++
	r.argv = append([]string(nil), argv...)
	r.opts = opts
	r.env = map[string]string{}
	for _, k := range []string{"ANSIBLE_CONFIG", "ANSIBLE_LOG_PATH", "JUNIT_OUTPUT_DIR", "DCI_CLIENT_ID"} {
		if v, ok := os.LookupEnv(k); ok {
			r.env[k] = v
		}
	}
	if r.check != nil {
		r.check()
	}
	return r.rc, r.err
}

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

var boundEnv = []string{
	"DCI_CONFIG_DIR", "DCI_PREFIX", "DCI_SETTINGS_FILE", "DCI_AUTH_FILE", "DCI_HOOKS_DIR",
	"DCI_VERBOSITY", "DCI_DRY_RUN", "DCI_NO_VALIDATION", "DCI_ENV_FILE", "DCI_NO_CLEANUP", "DCI_TMPDIR",
	"ANSIBLE_CONFIG", "ANSIBLE_LIMIT", "ANSIBLE_TAGS", "ANSIBLE_SKIP_TAGS", "ANSIBLE_ARGS",
	"ANSIBLE_EXTRA_VARS", "ANSIBLE_INVENTORY", "ANSIBLE_PLAYBOOK",
	"DCI_CONTAINER_IMAGE", "DCI_CONTAINER_RUNTIME", "DCI_CONTAINER_ARGS",
	"ANSIBLE_LOG_PATH", "JUNIT_OUTPUT_DIR", "DCI_CLIENT_ID",
}
