// SPDX-License-Identifier: AGPL-3.0-or-later
package agent

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dci-labs/dciagent/internal/credentials"
	"github.com/joho/godotenv"
)

// EnvBuilder computes the environment overlay for the child process.
type EnvBuilder func(ctx context.Context, v *Variant, cfg *Config) (map[string]string, error)

// loadCredentials is declared for test substitution.
var loadCredentials = credentials.Load

// AnsibleEnvironment sets ANSIBLE_CONFIG, then the variant's static
// variables, then the variables of every env file in order.
func AnsibleEnvironment(_ context.Context, v *Variant, cfg *Config) (map[string]string, error) {
	env := map[string]string{}
	if cfg.AnsibleConfig != "" {
		env["ANSIBLE_CONFIG"] = cfg.AnsibleConfig
	}
	for k, val := range v.Env {
		env[k] = val
	}
	for _, f := range cfg.EnvFiles {
		vars, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, val := range vars {
			env[k] = val
		}
	}
	return env, nil
}

// DCIEnvironment extends AnsibleEnvironment with the DCI credentials and
// the job bookkeeping variables. Later layers win on collisions.
func DCIEnvironment(ctx context.Context, v *Variant, cfg *Config) (map[string]string, error) {
	env, err := AnsibleEnvironment(ctx, v, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AuthFile != "" {
		creds, err := loadCredentials(ctx, cfg.AuthFile)
		if err != nil {
			return nil, err
		}
		for k, val := range creds {
			env[k] = val
		}
	}
	env["ANSIBLE_LOG_PATH"] = filepath.Join(cfg.TempDir, AnsibleLogName)
	env["JUNIT_OUTPUT_DIR"] = cfg.TempDir
	env["JUNIT_TEST_CASE_PREFIX"] = "test_"
	env["JUNIT_TASK_CLASS"] = "yes"
	return env, nil
}
