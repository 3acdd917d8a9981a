package agent

import (
	"testing"

	"github.com/dci-labs/dciagent/internal/types"
)

func TestBuiltins(t *testing.T) {
	byName := map[string]*Variant{}
	for _, v := range Builtins() {
		byName[v.Name] = v
	}
	if len(byName) != 3 {
		t.Fatalf("expected 3 builtins, got %v", BuiltinNames())
	}

	ansible := byName["ansible"]
	if ansible.Flavor != types.FlavorAnsible || ansible.Defaults.Inventory != DefaultInventory || ansible.Pre != nil {
		t.Fatalf("unexpected ansible variant: %+v", ansible)
	}
	if _, ok := ansible.Schema.Lookup(OptNoCleanup); ok {
		t.Fatal("plain ansible agent must not declare --no-cleanup")
	}

	openshift := byName["openshift"]
	if openshift.Flavor != types.FlavorDCI || openshift.Defaults.ConfigDir != "/etc/dci-openshift-agent" {
		t.Fatalf("unexpected openshift variant: %+v", openshift)
	}
	if _, ok := openshift.Schema.Lookup(OptNoCleanup); !ok {
		t.Fatal("DCI agents declare --no-cleanup")
	}

	rhel := byName["rhel"]
	if rhel.Container == nil || rhel.Container.Image == "" {
		t.Fatalf("rhel agent runs in a container: %+v", rhel)
	}
	if _, ok := rhel.Schema.Lookup(OptImage); !ok {
		t.Fatal("container agents declare --image")
	}
}

func TestWithContainerDoesNotMutate(t *testing.T) {
	base := NewDCIVariant("x", "", Defaults{})
	wrapped := base.WithContainer(ContainerDefaults{Image: "img"})
	if base.Container != nil {
		t.Fatal("base variant mutated")
	}
	if _, ok := base.Schema.Lookup(OptImage); ok {
		t.Fatal("base schema mutated")
	}
	if wrapped.Container.Image != "img" {
		t.Fatalf("unexpected container %+v", wrapped.Container)
	}
}

func TestFromDefinition(t *testing.T) {
	v, err := FromDefinition(types.AgentDefinition{
		Name:      "storage",
		Flavor:    types.FlavorDCI,
		Playbook:  "/usr/share/storage/agent.yml",
		ConfigDir: "/etc/storage",
		Env:       map[string]string{"DCI_CS_URL": "https://api"},
		Container: &types.ContainerConfig{Image: "img", Runtime: "docker", ExtraArgs: []string{"--privileged"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.Flavor != types.FlavorDCI || v.Defaults.ConfigDir != "/etc/storage" || v.Defaults.Playbook != "/usr/share/storage/agent.yml" {
		t.Fatalf("unexpected variant %+v", v)
	}
	if v.Summary == "" || v.Env["DCI_CS_URL"] != "https://api" {
		t.Fatalf("summary/env not set: %+v", v)
	}
	if v.Container == nil || v.Container.Runtime != "docker" || v.Container.ExtraArgs[0] != "--privileged" {
		t.Fatalf("container not set: %+v", v.Container)
	}

	plain, err := FromDefinition(types.AgentDefinition{Name: "lab"})
	if err != nil || plain.Flavor != types.FlavorAnsible || plain.Pre != nil {
		t.Fatalf("expected ansible flavor, got %+v %v", plain, err)
	}

	if _, err := FromDefinition(types.AgentDefinition{Name: "bad", Flavor: "chef"}); err == nil {
		t.Fatal("expected flavor error")
	}
}
