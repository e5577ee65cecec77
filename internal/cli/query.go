package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leengari/recordstore/internal/executor"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <statement> [statement...]",
		Short: "Run statements against the configured collections",
		Long: `Load the configured collections and run each statement in order in one
session, so a USE or PUSH is visible to the statements after it.

Example:
  recordstore query "from users | where age__gte=18 team=red | head 5"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runQuery(opts *RootOptions, statements []string, cmd *cobra.Command) error {
	env, err := loadEnvironment(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.close()

	session := executor.NewSession(env.registry, env.logger)
	out := cmd.OutOrStdout()

	var outputs []StatementOutput
	var failed error
	for _, stmt := range statements {
		res, err := session.ExecuteString(stmt)

		if opts.Format == "json" {
			outputs = append(outputs, toOutput(stmt, res, err))
		} else if err == nil {
			writeText(out, res)
		}

		if err != nil {
			failed = fmt.Errorf("%s: %w", stmt, err)
			break
		}
	}

	if opts.Format == "json" {
		if err := writeJSON(out, outputs); err != nil {
			return err
		}
	}
	return failed
}
