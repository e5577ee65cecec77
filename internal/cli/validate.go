package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool           `json:"valid"`
	Path        string         `json:"path,omitempty"`
	Collections map[string]int `json:"collections,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the config and its seed records",
		Long: `Parse the config file, declare every collection, push its seed records
and verify the resulting indexes. Reports the first constraint violation.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	result, err := validate(opts, cmd)
	out := cmd.OutOrStdout()

	if opts.Format == "json" {
		if err != nil {
			result.Error = err.Error()
		}
		if werr := writeJSON(out, result); werr != nil {
			return werr
		}
		return err
	}

	if err != nil {
		fmt.Fprintf(out, "✗ invalid: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✓ config valid (%d collections)\n", len(result.Collections))
	return nil
}

func validate(opts *RootOptions, cmd *cobra.Command) (*ValidationResult, error) {
	result := &ValidationResult{}

	env, err := loadEnvironment(opts, cmd.ErrOrStderr())
	if err != nil {
		return result, err
	}
	defer env.close()

	result.Path = env.path
	result.Collections = make(map[string]int)
	for _, name := range env.registry.List() {
		c, _ := env.registry.Get(name)
		if err := c.Verify(); err != nil {
			return result, err
		}
		result.Collections[name] = c.Len()
	}

	result.Valid = true
	return result, nil
}
