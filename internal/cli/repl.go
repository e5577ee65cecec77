package cli

import (
	"github.com/spf13/cobra"

	"github.com/leengari/recordstore/internal/executor"
	"github.com/leengari/recordstore/internal/repl"
)

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "repl",
		Short:        "Start an interactive shell over the configured collections",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.close()

			session := executor.NewSession(env.registry, env.logger)
			repl.Start(session, cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}

	return cmd
}
