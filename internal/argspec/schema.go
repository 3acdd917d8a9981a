// SPDX-License-Identifier: AGPL-3.0-or-later
package argspec

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/pflag"
)

// Schema is an ordered list of option declarations.
type Schema []Spec

// NewSchema builds a schema, rejecting duplicate destinations or flag names.
func NewSchema(specs ...Spec) (Schema, error) {
	seen := make(map[string]struct{}, len(specs))
	flags := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if _, dup := seen[s.Name]; dup {
			return nil, &ArgumentError{Name: s.Name, Reason: "declared twice"}
		}
		seen[s.Name] = struct{}{}
		if s.Positional() {
			continue
		}
		if _, dup := flags[s.FlagName()]; dup {
			return nil, &ArgumentError{Name: s.Name, Reason: fmt.Sprintf("flag --%s declared twice", s.FlagName())}
		}
		flags[s.FlagName()] = struct{}{}
	}
	return append(Schema(nil), specs...), nil
}

// MustSchema is NewSchema for static declarations.
func MustSchema(specs ...Spec) Schema {
	s, err := NewSchema(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

// With returns a new schema with more specs appended.
func (s Schema) With(specs ...Spec) (Schema, error) {
	all := make([]Spec, 0, len(s)+len(specs))
	all = append(all, s...)
	all = append(all, specs...)
	return NewSchema(all...)
}

// Lookup returns the spec stored under name.
func (s Schema) Lookup(name string) (Spec, bool) {
	for _, spec := range s {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}

func (s Schema) sorted() []Spec {
	out := append([]Spec(nil), s...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Positionals returns the arity-marked specs in declaration order.
func (s Schema) Positionals() []Spec {
	var out []Spec
	for _, spec := range s {
		if spec.Positional() {
			out = append(out, spec)
		}
	}
	return out
}

// ArgRange reports how many positional arguments the schema accepts;
// max is -1 when unbounded.
func (s Schema) ArgRange() (min, max int) {
	for _, spec := range s.Positionals() {
		switch spec.NArgs {
		case "?":
			max++
		case "1":
			min++
			max++
		case "*":
			max = -1
		case "+":
			min++
			max = -1
		}
		if max < 0 {
			break
		}
	}
	return min, max
}

// Attach registers every flag-bearing spec on fs, sorted by destination name.
// Every flag is registered even when a bound environment value is invalid;
// those errors are joined into the returned error.
func (s Schema) Attach(fs *pflag.FlagSet) error {
	var errs []error
	for _, spec := range s.sorted() {
		if spec.Positional() {
			if _, err := spec.resolveDefault(); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		_, opts, err := spec.Render()
		if err != nil {
			errs = append(errs, err)
		}
		name := spec.FlagName()
		switch opts.Action {
		case Flag:
			def, _ := opts.Default.(bool)
			fs.BoolP(name, spec.Short, def, opts.Help)
		case Count:
			fs.CountP(name, spec.Short, opts.Help)
			if n, ok := opts.Default.(int); ok && n != 0 {
				f := fs.Lookup(name)
				_ = f.Value.Set(strconv.Itoa(n))
				f.DefValue = strconv.Itoa(n)
			}
		case Append:
			def, _ := opts.Default.([]string)
			fs.StringArrayP(name, spec.Short, def, opts.Help)
		default:
			if opts.Kind == Int {
				def, _ := opts.Default.(int)
				fs.IntP(name, spec.Short, def, opts.Help)
			} else {
				def, _ := opts.Default.(string)
				fs.StringP(name, spec.Short, def, opts.Help)
			}
		}
		if opts.Metavar != "" {
			_ = fs.SetAnnotation(name, "metavar", []string{opts.Metavar})
		}
	}
	return errors.Join(errs...)
}

// Load copies every parsed value whose destination matches a declared spec
// into a fresh Values map. Positional specs consume args in order and fall
// back to their rendered default.
func (s Schema) Load(fs *pflag.FlagSet, args []string) Values {
	out := make(Values, len(s))
	for _, spec := range s {
		if spec.Positional() {
			continue
		}
		name := spec.FlagName()
		if fs.Lookup(name) == nil {
			continue
		}
		switch spec.Action {
		case Flag:
			v, _ := fs.GetBool(name)
			out[spec.Name] = v
		case Count:
			v, _ := fs.GetCount(name)
			out[spec.Name] = v
		case Append:
			v, _ := fs.GetStringArray(name)
			out[spec.Name] = append([]string(nil), v...)
		default:
			if spec.Kind == Int {
				v, _ := fs.GetInt(name)
				out[spec.Name] = v
			} else {
				v, _ := fs.GetString(name)
				out[spec.Name] = v
			}
		}
	}

	rest := args
	for _, spec := range s.Positionals() {
		switch spec.NArgs {
		case "*", "+":
			if len(rest) > 0 {
				out[spec.Name] = append([]string(nil), rest...)
				rest = nil
				continue
			}
		default:
			if len(rest) > 0 {
				out[spec.Name] = rest[0]
				rest = rest[1:]
				continue
			}
		}
		if def, err := spec.resolveDefault(); err == nil && def != nil {
			out[spec.Name] = def
		}
	}
	return out
}
