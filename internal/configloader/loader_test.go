package configloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dci-labs/dciagent/internal/types"
)

func writeAgents(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAgentsMissingFile(t *testing.T) {
	defs, err := LoadAgents(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected no agents, got %v", defs)
	}
}

func TestLoadAgentsEmptyFile(t *testing.T) {
	defs, err := LoadAgents(writeAgents(t, ""))
	if err != nil || len(defs) != 0 {
		t.Fatalf("expected empty result, got %v %v", defs, err)
	}
}

func TestLoadAgents(t *testing.T) {
	path := writeAgents(t, `
agents:
  - name: storage
    summary: DCI storage agent
    flavor: DCI
    playbook: /usr/share/dci-storage-agent/agent.yml
    config_dir: /etc/dci-storage-agent
    env:
      DCI_CS_URL: https://api.example.com
    container:
      image: quay.io/example/ansible:latest
      extra_args: ["--privileged"]
  - name: lab
    playbook: /srv/lab/site.yml
`)
	defs, err := LoadAgents(path, "ansible", "openshift", "rhel")
	if err != nil {
		t.Fatalf("LoadAgents: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(defs))
	}
	storage := defs[0]
	if storage.Flavor != types.FlavorDCI {
		t.Fatalf("flavor not normalized: %q", storage.Flavor)
	}
	if storage.Container == nil || storage.Container.Image != "quay.io/example/ansible:latest" {
		t.Fatalf("container not decoded: %+v", storage.Container)
	}
	if storage.Env["DCI_CS_URL"] != "https://api.example.com" {
		t.Fatalf("env not decoded: %v", storage.Env)
	}
	if defs[1].Flavor != types.FlavorAnsible {
		t.Fatalf("expected default flavor ansible, got %q", defs[1].Flavor)
	}
}

func TestLoadAgentsRejects(t *testing.T) {
	cases := map[string]string{
		"empty name":     "agents:\n  - playbook: /x.yml\n",
		"bad name":       "agents:\n  - name: Bad Name\n",
		"duplicate":      "agents:\n  - name: a\n  - name: a\n",
		"builtin":        "agents:\n  - name: rhel\n",
		"flavor":         "agents:\n  - name: a\n    flavor: chef\n",
		"image":          "agents:\n  - name: a\n    container:\n      runtime: podman\n",
		"unknown field":  "agents:\n  - name: a\n    playbok: /x.yml\n",
		"env name":       "agents:\n  - name: a\n    env:\n      \"A=B\": c\n",
		"malformed yaml": "agents: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAgents(writeAgents(t, body), "rhel")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), "agents.yaml") {
				t.Fatalf("error should name the file: %v", err)
			}
		})
	}
}
