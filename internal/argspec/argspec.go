// SPDX-License-Identifier: AGPL-3.0-or-later

// Package argspec declares command-line options as immutable descriptors and
// renders them onto pflag flag sets. Each descriptor may be bound to an
// environment variable whose value becomes the flag default.
package argspec

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Action selects how repeated occurrences of an option are folded into a value.
type Action int

const (
	// Store keeps the last value given.
	Store Action = iota
	// Flag is a boolean switch.
	Flag
	// Count counts occurrences (-vvv).
	Count
	// Append collects every occurrence in order.
	Append
)

func (a Action) String() string {
	switch a {
	case Store:
		return "store"
	case Flag:
		return "flag"
	case Count:
		return "count"
	case Append:
		return "append"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Kind is the value type of a Store option.
type Kind int

const (
	String Kind = iota
	Int
)

// ErrArgument is wrapped by every ArgumentError.
var ErrArgument = errors.New("invalid argument declaration")

// ArgumentError reports a malformed option declaration.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Name == "" {
		return "argument: " + e.Reason
	}
	return fmt.Sprintf("argument %q: %s", e.Name, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }

// ErrEnvValue is wrapped by every EnvError.
var ErrEnvValue = errors.New("invalid environment value")

// EnvError reports a bound environment variable whose value does not parse
// as the option's type.
type EnvError struct {
	Env   string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("invalid value %q for $%s: %v", e.Value, e.Env, e.Err)
}

func (e *EnvError) Unwrap() []error { return []error{ErrEnvValue, e.Err} }

// Spec describes one configurable parameter.
type Spec struct {
	// Name is the destination the parsed value is stored under.
	Name    string
	Help    string
	Short   string
	Long    string
	Action  Action
	Kind    Kind
	Default any
	// Env names the environment variable bound to this option.
	Env string
	// NArgs marks a positional parameter ("?", "1", "*" or "+").
	NArgs   string
	Metavar string
}

// Options are the parser settings produced by Render.
type Options struct {
	Help    string
	Action  Action
	Kind    Kind
	Default any
	Dest    string
	NArgs   string
	Metavar string
}

// New validates and normalizes a declaration. At least one of Short, Long or
// NArgs must be set.
func New(s Spec) (Spec, error) {
	s.Short = strings.TrimLeft(strings.TrimSpace(s.Short), "-")
	s.Long = strings.TrimLeft(strings.TrimSpace(s.Long), "-")
	s.NArgs = strings.TrimSpace(s.NArgs)
	if s.Short == "" && s.Long == "" && s.NArgs == "" {
		return Spec{}, &ArgumentError{Name: s.Name, Reason: "need to define one of short or long argument forms"}
	}
	if len(s.Short) > 1 {
		return Spec{}, &ArgumentError{Name: s.Name, Reason: fmt.Sprintf("short form %q must be a single character", s.Short)}
	}
	switch s.NArgs {
	case "", "?", "1", "*", "+":
	default:
		return Spec{}, &ArgumentError{Name: s.Name, Reason: fmt.Sprintf("unsupported nargs %q", s.NArgs)}
	}
	if s.Name == "" {
		if s.Long == "" {
			return Spec{}, &ArgumentError{Reason: "positional and short-only arguments need a destination name"}
		}
		s.Name = strings.ReplaceAll(s.Long, "-", "_")
	}
	if s.Env != "" {
		s.Env = strings.ToUpper(strings.TrimSpace(s.Env))
	}
	return s, nil
}

// MustNew is New for static declarations; it panics on an ArgumentError.
func MustNew(s Spec) Spec {
	spec, err := New(s)
	if err != nil {
		panic(err)
	}
	return spec
}

// Positional reports whether the spec is an arity-marked positional parameter.
func (s Spec) Positional() bool {
	return s.NArgs != "" && s.Short == "" && s.Long == ""
}

// FlagName is the long flag name registered with pflag. Short-only specs are
// registered under their destination name since pflag requires a long form.
func (s Spec) FlagName() string {
	if s.Long != "" {
		return s.Long
	}
	return strings.ReplaceAll(s.Name, "_", "-")
}

// Render returns the flag forms and parser options for the spec. When the
// spec is bound to an environment variable that is set, its value replaces
// the static default. A value that does not parse is reported as an
// *EnvError and the static default is kept in Options.
func (s Spec) Render() ([]string, Options, error) {
	var forms []string
	if s.Short != "" {
		forms = append(forms, "-"+s.Short)
	}
	if s.Long != "" {
		forms = append(forms, "--"+s.Long)
	}
	def, err := s.resolveDefault()
	if err != nil {
		def = s.Default
	}
	return forms, Options{
		Help:    s.helpText(),
		Action:  s.Action,
		Kind:    s.Kind,
		Default: def,
		Dest:    s.Name,
		NArgs:   s.NArgs,
		Metavar: s.Metavar,
	}, err
}

func (s Spec) helpText() string {
	var extra []string
	if s.Env != "" {
		extra = append(extra, "env: $"+s.Env)
	}
	if s.Default != nil {
		extra = append(extra, fmt.Sprintf("default: %v", s.Default))
	}
	if len(extra) == 0 {
		return s.Help
	}
	return fmt.Sprintf("%s (%s)", s.Help, strings.Join(extra, ", "))
}

func (s Spec) resolveDefault() (any, error) {
	if s.Env == "" {
		return s.Default, nil
	}
	raw := os.Getenv(s.Env)
	if raw == "" {
		return s.Default, nil
	}
	envErr := func(err error) error {
		return &EnvError{Env: s.Env, Value: raw, Err: err}
	}
	switch s.Action {
	case Flag:
		b, err := ParseBool(raw)
		if err != nil {
			return nil, envErr(err)
		}
		return b, nil
	case Count:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, envErr(err)
		}
		return n, nil
	case Append:
		return []string{raw}, nil
	}
	if s.Kind == Int {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, envErr(err)
		}
		return n, nil
	}
	return raw, nil
}

// ParseBool accepts y, yes, t, true, on and 1 as true, and n, no, f, false,
// off and 0 as false, in any case.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}
