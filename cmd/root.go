// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dci-labs/dciagent/internal/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// flagAliases maps alternate spellings to canonical flag names.
var flagAliases = map[string]string{
	"skip-validation": "no-validation",
}

// NewRootCmd builds the command tree for the given agents. The error reports
// environment variables bound to options whose values do not parse.
func NewRootCmd(variants []*agent.Variant) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "dci-agent-ctl",
		Short:         "Discover DCI agent configuration and run its playbook",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.Flags().BoolP("version", "V", false, "print the version and exit")
	attachErr := agent.GlobalSchema.Attach(root.PersistentFlags())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := flagAliases[name]; ok {
			name = canonical
		}
		return pflag.NormalizedName(name)
	})

	regErr := RegisterAgentCommands(root, variants)
	root.AddCommand(NewCompletionCmd(root))
	return root, errors.Join(attachErr, regErr)
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	variants, err := LoadVariants()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return ExitFailure
	}
	root, err := NewRootCmd(variants)
	if err == nil {
		root.SetArgs(args)
		root.SetOut(stdout)
		root.SetErr(stderr)
		err = root.ExecuteContext(ctx)
	}
	code, report := exitCode(err)
	if report {
		fmt.Fprintln(stderr, "Error:", err)
		if code == ExitUsage {
			fmt.Fprintln(stderr, "Run 'dci-agent-ctl --help' for usage.")
		}
	}
	return code
}

func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
