// SPDX-License-Identifier: AGPL-3.0-or-later

package configloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/dci-labs/dciagent/internal/types"
	"gopkg.in/yaml.v3"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// LoadAgents reads user-defined agents from path. A missing file yields no
// agents and no error. reserved lists names that definitions may not reuse.
func LoadAgents(path string, reserved ...string) ([]types.AgentDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open agents file: %w", err)
	}

	var doc types.AgentsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode agents file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(doc.Agents)+len(reserved))
	for _, name := range reserved {
		seen[name] = struct{}{}
	}
	out := make([]types.AgentDefinition, 0, len(doc.Agents))
	for i, def := range doc.Agents {
		def.Name = strings.TrimSpace(def.Name)
		def.Flavor = strings.ToLower(strings.TrimSpace(def.Flavor))
		if def.Flavor == "" {
			def.Flavor = types.FlavorAnsible
		}
		if err := validate(def); err != nil {
			return nil, fmt.Errorf("%s: agent #%d: %w", path, i+1, err)
		}
		if _, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("%s: agent #%d: name %q already defined", path, i+1, def.Name)
		}
		seen[def.Name] = struct{}{}
		out = append(out, def)
	}
	return out, nil
}

func validate(def types.AgentDefinition) error {
	if def.Name == "" {
		return errors.New("name is required")
	}
	if !namePattern.MatchString(def.Name) {
		return fmt.Errorf("invalid name %q: use lower-case letters, digits, '-' and '_'", def.Name)
	}
	switch def.Flavor {
	case types.FlavorAnsible, types.FlavorDCI:
	default:
		return fmt.Errorf("agent %q: unsupported flavor %q (want %s or %s)", def.Name, def.Flavor, types.FlavorAnsible, types.FlavorDCI)
	}
	if def.Container != nil && strings.TrimSpace(def.Container.Image) == "" {
		return fmt.Errorf("agent %q: container.image is required", def.Name)
	}
	for k := range def.Env {
		if k == "" || strings.Contains(k, "=") {
			return fmt.Errorf("agent %q: invalid env name %q", def.Name, k)
		}
	}
	return nil
}
