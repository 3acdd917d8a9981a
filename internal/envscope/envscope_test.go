package envscope

import (
	"os"
	"sort"
	"strings"
	"testing"
)

func environ() string {
	env := os.Environ()
	sort.Strings(env)
	return strings.Join(env, "\n")
}

func TestApplyRestoresPreviousValues(t *testing.T) {
	t.Setenv("ENVSCOPE_EXISTING", "before")
	os.Unsetenv("ENVSCOPE_ABSENT")
	before := environ()

	restore, err := Apply(map[string]string{
		"ENVSCOPE_EXISTING": "during",
		"ENVSCOPE_ABSENT":   "added",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := os.Getenv("ENVSCOPE_EXISTING"); got != "during" {
		t.Fatalf("overlay not applied, got %q", got)
	}
	if got := os.Getenv("ENVSCOPE_ABSENT"); got != "added" {
		t.Fatalf("overlay not applied, got %q", got)
	}

	restore()
	if after := environ(); after != before {
		t.Fatalf("environment not restored\nbefore:\n%s\nafter:\n%s", before, after)
	}
	if _, ok := os.LookupEnv("ENVSCOPE_ABSENT"); ok {
		t.Fatalf("previously absent key still present")
	}
}

func TestApplyRestoresEmptyValue(t *testing.T) {
	t.Setenv("ENVSCOPE_EMPTY", "")
	restore, err := Apply(map[string]string{"ENVSCOPE_EMPTY": "x"})
	if err != nil {
		t.Fatal(err)
	}
	restore()
	v, ok := os.LookupEnv("ENVSCOPE_EMPTY")
	if !ok || v != "" {
		t.Fatalf("expected empty value to be restored as present, got %q present=%v", v, ok)
	}
}

func TestApplyRestoresOnPanic(t *testing.T) {
	os.Unsetenv("ENVSCOPE_PANIC")
	before := environ()

	func() {
		defer func() { _ = recover() }()
		restore, err := Apply(map[string]string{"ENVSCOPE_PANIC": "boom"})
		if err != nil {
			t.Fatal(err)
		}
		defer restore()
		panic("protected block failed")
	}()

	if after := environ(); after != before {
		t.Fatalf("environment not restored after panic")
	}
}

func TestApplyNestedDisjointScopes(t *testing.T) {
	os.Unsetenv("ENVSCOPE_OUTER")
	os.Unsetenv("ENVSCOPE_INNER")
	before := environ()

	outer, err := Apply(map[string]string{"ENVSCOPE_OUTER": "1"})
	if err != nil {
		t.Fatal(err)
	}
	inner, err := Apply(map[string]string{"ENVSCOPE_INNER": "2"})
	if err != nil {
		t.Fatal(err)
	}
	if os.Getenv("ENVSCOPE_OUTER") != "1" || os.Getenv("ENVSCOPE_INNER") != "2" {
		t.Fatalf("nested overlays not visible")
	}
	inner()
	if _, ok := os.LookupEnv("ENVSCOPE_INNER"); ok {
		t.Fatalf("inner key leaked")
	}
	if os.Getenv("ENVSCOPE_OUTER") != "1" {
		t.Fatalf("inner restore clobbered outer key")
	}
	outer()
	if after := environ(); after != before {
		t.Fatalf("environment not restored")
	}
}

func TestRestoreIsIdempotent(t *testing.T) {
	t.Setenv("ENVSCOPE_TWICE", "orig")
	restore, err := Apply(map[string]string{"ENVSCOPE_TWICE": "new"})
	if err != nil {
		t.Fatal(err)
	}
	restore()
	os.Setenv("ENVSCOPE_TWICE", "changed-later")
	restore()
	if got := os.Getenv("ENVSCOPE_TWICE"); got != "changed-later" {
		t.Fatalf("second restore must be a no-op, got %q", got)
	}
}
