package printer

import (
	"bytes"
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	cases := map[string]bool{
		"DCI_PASSWORD":      true,
		"dci_api_secret":    true,
		"My_Secret_Token":   true,
		"ANSIBLE_PASSWORD2": true,
		"DCI_CLIENT_ID":     false,
		"ANSIBLE_CONFIG":    false,
	}
	for key, secret := range cases {
		got := Redact(key, "abc123")
		if secret && got != Redacted {
			t.Fatalf("%s not redacted: %q", key, got)
		}
		if !secret && got != "abc123" {
			t.Fatalf("%s unexpectedly redacted", key)
		}
	}
}

func TestEnvironmentSectionRedacts(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	env := map[string]string{"DCI_PASSWORD": "abc123", "DCI_CLIENT_ID": "remoteci/1"}
	p.Environment("Running with the following extra environment:", []string{"DCI_CLIENT_ID", "DCI_PASSWORD"}, env)

	out := buf.String()
	if strings.Contains(out, "abc123") {
		t.Fatalf("secret value printed:\n%s", out)
	}
	if !strings.Contains(out, "DCI_PASSWORD=<redacted>") {
		t.Fatalf("missing redacted line:\n%s", out)
	}
	if !strings.Contains(out, "DCI_CLIENT_ID=remoteci/1") {
		t.Fatalf("missing plain line:\n%s", out)
	}
	if !strings.Contains(out, "==> Running with the following extra environment:") {
		t.Fatalf("missing header:\n%s", out)
	}
}
