// SPDX-License-Identifier: AGPL-3.0-or-later
package argspec

// Values holds parsed option values keyed by destination name.
type Values map[string]any

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Int(name string) int {
	n, _ := v[name].(int)
	return n
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Strings returns list values; a scalar string is returned as a one-element list.
func (v Values) Strings(name string) []string {
	switch val := v[name].(type) {
	case []string:
		return append([]string(nil), val...)
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}

// Merge copies every entry of other into v.
func (v Values) Merge(other Values) Values {
	for k, val := range other {
		v[k] = val
	}
	return v
}
