// Package cli implements the formregistry command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/santhoseks/openmrs-core/internal/validation"
)

type flags struct {
	locale string
}

// NewRootCmd builds the formregistry command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	app := newApp(opts...)
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:           "formregistry",
		Short:         "Manage the field types used on forms",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return app.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.locale, "locale", validation.DefaultLocale, "locale of validation messages")

	rootCmd.AddCommand(
		newMigrateCmd(app),
		newValidateCmd(app, f),
		newImportCmd(app, f),
		newListCmd(app),
		newRetireCmd(app),
		newUnretireCmd(app, f),
		newPurgeCmd(app),
	)

	return rootCmd
}
