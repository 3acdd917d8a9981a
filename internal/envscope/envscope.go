// SPDX-License-Identifier: AGPL-3.0-or-later

// Package envscope applies temporary overlays on the process environment.
//
// The process environment is global: scopes with disjoint keys may nest, but
// overlapping scopes must not be used concurrently.
package envscope

import (
	"fmt"
	"os"
	"sort"
)

type snapshot struct {
	key     string
	value   string
	present bool
}

// Apply sets every key of overlay in the process environment and returns a
// restore func that puts back the previous value of each key, unsetting the
// keys that were absent. Restore is safe to call more than once; callers
// normally defer it right after a successful Apply.
func Apply(overlay map[string]string) (restore func(), err error) {
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	saved := make([]snapshot, 0, len(keys))
	for _, k := range keys {
		prev, ok := os.LookupEnv(k)
		saved = append(saved, snapshot{key: k, value: prev, present: ok})
	}

	done := false
	restore = func() {
		if done {
			return
		}
		done = true
		for i := len(saved) - 1; i >= 0; i-- {
			s := saved[i]
			if s.present {
				_ = os.Setenv(s.key, s.value)
			} else {
				_ = os.Unsetenv(s.key)
			}
		}
	}

	for i, k := range keys {
		if err := os.Setenv(k, overlay[k]); err != nil {
			saved = saved[:i+1]
			restore()
			return func() {}, fmt.Errorf("set %s: %w", k, err)
		}
	}
	return restore, nil
}
