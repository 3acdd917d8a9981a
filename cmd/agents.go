// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dci-labs/dciagent/internal/agent"
	"github.com/dci-labs/dciagent/internal/argspec"
	"github.com/dci-labs/dciagent/internal/configloader"
	"github.com/dci-labs/dciagent/internal/paths"
	"github.com/spf13/cobra"
)

// LoadVariants returns the builtin agents followed by the user-defined ones
// found in the agents file.
func LoadVariants() ([]*agent.Variant, error) {
	variants := agent.Builtins()
	defs, err := configloader.LoadAgents(paths.AgentsFile(), agent.BuiltinNames()...)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		v, err := agent.FromDefinition(def)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// RegisterAgentCommands adds one subcommand per variant, each carrying the
// flags rendered from the variant's schema. Every command is registered; the
// error collects invalid environment defaults.
func RegisterAgentCommands(root *cobra.Command, variants []*agent.Variant) error {
	var errs []error
	for _, v := range variants {
		min, max := v.Schema.ArgRange()
		use := v.Name
		for _, p := range v.Schema.Positionals() {
			name := p.Metavar
			if name == "" {
				name = p.Name
			}
			if p.NArgs == "?" {
				use += " [" + name + "]"
			} else {
				use += " " + name
			}
		}
		cmd := &cobra.Command{
			Use:   use,
			Short: v.Summary,
			Args:  usageArgs(argRange(min, max)),
			RunE:  makeRunE(v),
			Annotations: map[string]string{
				"agent":  v.Name,
				"flavor": v.Flavor,
			},
		}
		if err := v.Schema.Attach(cmd.Flags()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", v.Name, err))
		}
		root.AddCommand(cmd)
	}
	return errors.Join(errs...)
}

func argRange(min, max int) cobra.PositionalArgs {
	if max < 0 {
		return cobra.MinimumNArgs(min)
	}
	return cobra.RangeArgs(min, max)
}

func makeRunE(v *agent.Variant) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		vals := argspec.Values{}
		vals.Merge(agent.GlobalSchema.Load(cmd.Flags(), nil))
		vals.Merge(v.Schema.Load(cmd.Flags(), args))
		cfg := agent.FromValues(vals)

		logger := newLogger(cmd.ErrOrStderr(), cfg.Verbosity, os.Getenv("DCI_LOG_FORMAT"))
		logger.Debug("starting agent", "agent", v.Name, "flavor", v.Flavor)

		runner := &agent.Runner{
			Variant: v,
			Config:  cfg,
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
			Logger:  logger,
		}
		rc, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		if rc != 0 {
			logger.Info("agent exited with a non-zero status", "agent", v.Name, "rc", rc)
			return &ExitError{Code: rc}
		}
		return nil
	}
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: fmt.Errorf("%s: %w", cmd.CommandPath(), err)}
		}
		return nil
	}
}
