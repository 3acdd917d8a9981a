package agent

import (
	"strings"
	"testing"
)

func TestBuildCommandFull(t *testing.T) {
	cfg := &Config{
		Executable: "/usr/bin/ansible-playbook",
		Inventory:  "/etc/dci/hosts",
		Limit:      "web servers",
		Tags:       "deploy,test",
		SkipTags:   "slow",
		ExtraVars:  []string{"a=1", `msg=hello world`},
		ExtraArgs:  `--check --diff -e "x=a b"`,
		Verbosity:  3,
		Playbook:   "/usr/share/agent/site.yml",
	}
	argv, err := BuildCommand(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"/usr/bin/ansible-playbook",
		"--inventory", "/etc/dci/hosts",
		"--limit", "'web servers'",
		"--tags", "deploy,test",
		"--skip-tags", "slow",
		"--extra-vars", "a=1",
		"--extra-vars", "'msg=hello world'",
		"--check", "--diff", "-e", "x=a b",
		"-vvv",
		"/usr/share/agent/site.yml",
	}
	if strings.Join(argv, "\x00") != strings.Join(want, "\x00") {
		t.Fatalf("expected\n%q\ngot\n%q", want, argv)
	}
}

func TestBuildCommandExecutableFirstPlaybookLast(t *testing.T) {
	const (
		hasLimit = 1 << iota
		hasTags
		hasSkip
		hasVars
		hasArgs
		hasVerbose
		hasInventory
		all
	)
	for mask := 0; mask < all; mask++ {
		cfg := &Config{Executable: "/bin/ansible-playbook", Playbook: "/p/site.yml"}
		if mask&hasLimit != 0 {
			cfg.Limit = "h1"
		}
		if mask&hasTags != 0 {
			cfg.Tags = "t"
		}
		if mask&hasSkip != 0 {
			cfg.SkipTags = "s"
		}
		if mask&hasVars != 0 {
			cfg.ExtraVars = []string{"k=v", "@/etc/settings.yml"}
		}
		if mask&hasArgs != 0 {
			cfg.ExtraArgs = "--diff --forks 10"
		}
		if mask&hasVerbose != 0 {
			cfg.Verbosity = 2
		}
		if mask&hasInventory != 0 {
			cfg.Inventory = "/etc/hosts"
		}
		argv, err := BuildCommand(cfg)
		if err != nil {
			t.Fatalf("mask %b: %v", mask, err)
		}
		if argv[0] != cfg.Executable || argv[len(argv)-1] != cfg.Playbook {
			t.Fatalf("mask %b: bad ordering %v", mask, argv)
		}
		if argv[1] != "--inventory" || argv[2] != cfg.Inventory {
			t.Fatalf("mask %b: inventory must follow the executable: %v", mask, argv)
		}
	}
}

func TestBuildCommandBadExtraArgs(t *testing.T) {
	_, err := BuildCommand(&Config{Executable: "x", ExtraArgs: `--foo "unterminated`})
	if err == nil {
		t.Fatal("expected split error")
	}
}

func TestBuildCommandNoExecutable(t *testing.T) {
	if _, err := BuildCommand(&Config{Playbook: "a.yml"}); err == nil {
		t.Fatal("expected error")
	}
}
