// Package cli implements exitsctl, the operator command line for the
// listings marketplace.
package cli

import (
	"fmt"
	"slices"

	"exits_backend/internal/vertical"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format        string // "json" | "text"
	VerticalsFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the exitsctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "exitsctl",
		Short:         "Operate the business-for-sale listings marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.VerticalsFile, "verticals-file", "", "vertical registry YAML (defaults to the embedded registry)")

	cmd.AddCommand(NewEstimateCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewDigestCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewVerticalsCommand(opts))

	return cmd
}

func (o *RootOptions) registry() (*vertical.Registry, error) {
	if o.VerticalsFile == "" {
		return vertical.LoadDefault()
	}
	return vertical.Load(o.VerticalsFile)
}

// resolveVertical looks up slug, or the default vertical when slug is empty.
func (o *RootOptions) resolveVertical(slug string) (*vertical.Registry, *vertical.Vertical, error) {
	reg, err := o.registry()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load verticals", err)
	}
	if slug == "" {
		return reg, reg.Default(), nil
	}
	v, ok := reg.BySlug(slug)
	if !ok {
		return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown vertical %q (valid: %v)", slug, reg.Slugs()))
	}
	return reg, v, nil
}
