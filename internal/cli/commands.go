package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/santhoseks/openmrs-core/internal/fieldfile"
	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/service"
	"github.com/santhoseks/openmrs-core/internal/validation"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"

	defaultRetiredBy = "formregistry"
	importRetireNote = "retired by import"
)

var (
	ErrInvalidFieldTypes = errors.New("field types are invalid")
	ErrImportFailed      = errors.New("import failed")
	ErrUnknownOutput     = errors.New("unknown output format")
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd.Context(), "migrate", func(context.Context) error {
				// the schema is migrated while the database is opened
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "database schema is up to date")
				return err
			})
		},
	}
}

func newValidateCmd(app *App, f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate the field types of a file without saving them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), "validate", func(ctx context.Context) error {
				entries, err := fieldfile.Load(args[0])
				if err != nil {
					return err
				}

				return validateEntries(ctx, app, cmd.OutOrStdout(), f.locale, entries)
			})
		},
	}
}

func validateEntries(ctx context.Context, app *App, w io.Writer, locale string, entries []fieldfile.Entry) error {
	invalid := 0

	for _, e := range entries {
		ft, err := candidateFor(ctx, app, e)
		if err != nil {
			return err
		}

		errs, err := app.fieldTypes.ValidateFieldType(ctx, ft)
		if err != nil {
			return err
		}

		if errs.HasErrors() {
			invalid++
			printFindings(w, app.messages, locale, e.Name, errs)
			continue
		}

		fmt.Fprintf(w, "%s: ok\n", e.Name)
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidFieldTypes, invalid, len(entries))
	}

	return nil
}

func newImportCmd(app *App, f *flags) *cobra.Command {
	var retiredBy string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create or update the field types of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), "import", func(ctx context.Context) error {
				entries, err := fieldfile.Load(args[0])
				if err != nil {
					return err
				}

				return importEntries(ctx, app, cmd.OutOrStdout(), f.locale, retiredBy, entries)
			})
		},
	}

	cmd.Flags().StringVar(&retiredBy, "by", defaultRetiredBy, "user recorded when entries are imported as retired")

	return cmd
}

func importEntries(ctx context.Context, app *App, w io.Writer, locale, retiredBy string, entries []fieldfile.Entry) error {
	failed := 0

	for _, e := range entries {
		ft, err := candidateFor(ctx, app, e)
		if err != nil {
			return err
		}

		created := ft.IsNew()

		err = app.fieldTypes.SaveFieldType(ctx, ft)
		if err == nil && e.Retired && !ft.Retired {
			err = app.fieldTypes.RetireFieldType(ctx, ft.UUID, retiredBy, importRetireNote)
		}

		var validationErr *validation.Error
		switch {
		case errors.As(err, &validationErr):
			failed++
			printFindings(w, app.messages, locale, e.Name, validationErr.Errors)
		case err != nil:
			failed++
			slogctx.Error(ctx, "could not import field type", "name", e.Name, "error", err)
			fmt.Fprintf(w, "%s: %v\n", e.Name, err)
		case created:
			fmt.Fprintf(w, "%s: created %s\n", e.Name, ft.UUID)
		default:
			fmt.Fprintf(w, "%s: updated %s\n", e.Name, ft.UUID)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d field types were not saved", ErrImportFailed, failed, len(entries))
	}

	return nil
}

// candidateFor resolves an entry to the stored field type it updates,
// or a new field type if its uuid is unknown.
func candidateFor(ctx context.Context, app *App, e fieldfile.Entry) (*model.FieldType, error) {
	if e.UUID == "" {
		return e.NewFieldType(), nil
	}

	existing, err := app.fieldTypes.FieldTypeByUUID(ctx, e.UUID)
	switch {
	case errors.Is(err, service.ErrFieldTypeNotFound):
		return e.NewFieldType(), nil
	case err != nil:
		return nil, err
	}

	e.ApplyTo(existing)

	return existing, nil
}

func newListCmd(app *App) *cobra.Command {
	var (
		includeRetired bool
		output         string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List field types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd.Context(), "list", func(ctx context.Context) error {
				fieldTypes, err := allFieldTypes(ctx, app.fieldTypes, includeRetired)
				if err != nil {
					return err
				}

				return printFieldTypes(cmd.OutOrStdout(), output, fieldTypes)
			})
		},
	}

	cmd.Flags().BoolVar(&includeRetired, "include-retired", false, "also list retired field types")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or yaml")

	return cmd
}

func allFieldTypes(ctx context.Context, svc *service.FieldType, includeRetired bool) ([]model.FieldType, error) {
	var (
		res   []model.FieldType
		token string
	)

	for {
		page, next, err := svc.FieldTypes(ctx, includeRetired, 0, token)
		if err != nil {
			return nil, err
		}

		res = append(res, page...)

		if next == "" {
			return res, nil
		}
		token = next
	}
}

func printFieldTypes(w io.Writer, output string, fieldTypes []model.FieldType) error {
	switch output {
	case outputYAML:
		return fieldfile.Encode(w, fieldTypes)
	case outputTable:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "UUID\tNAME\tSET\tRETIRED\tDESCRIPTION")
		for _, ft := range fieldTypes {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n", ft.UUID, ft.Name, ft.IsSet, ft.Retired, ft.Description)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutput, output)
	}
}

func newRetireCmd(app *App) *cobra.Command {
	var retiredBy, reason string

	cmd := &cobra.Command{
		Use:   "retire UUID",
		Short: "Retire a field type so its name can be reused",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), "retire", func(ctx context.Context) error {
				if err := app.fieldTypes.RetireFieldType(ctx, args[0], retiredBy, reason); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "retired %s\n", args[0])
				return err
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason for retiring (required)")
	cmd.Flags().StringVar(&retiredBy, "by", defaultRetiredBy, "user retiring the field type")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newUnretireCmd(app *App, f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "unretire UUID",
		Short: "Bring a retired field type back into use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), "unretire", func(ctx context.Context) error {
				err := app.fieldTypes.UnretireFieldType(ctx, args[0])

				var validationErr *validation.Error
				if errors.As(err, &validationErr) {
					printFindings(cmd.OutOrStdout(), app.messages, f.locale, args[0], validationErr.Errors)
				}
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "unretired %s\n", args[0])
				return err
			})
		},
	}
}

func newPurgeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "purge UUID",
		Short: "Delete a field type permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), "purge", func(ctx context.Context) error {
				if err := app.fieldTypes.PurgeFieldType(ctx, args[0]); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", args[0])
				return err
			})
		},
	}
}

func printFindings(w io.Writer, messages *validation.Messages, locale, name string, errs *validation.Errors) {
	for _, fe := range errs.All() {
		fmt.Fprintf(w, "%s: %s: %s\n", name, fe.Field, messages.Translate(locale, fe))
	}
}
