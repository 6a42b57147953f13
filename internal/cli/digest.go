package cli

import (
	"fmt"
	"io"

	"exits_backend/internal/bootstrap"
	digestservice "exits_backend/internal/digest/service"
	"exits_backend/platform/config"
	"exits_backend/platform/logger"

	"github.com/spf13/cobra"
)

// NewDigestCommand creates the digest command group.
func NewDigestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Build and send the weekly top listings email",
	}

	cmd.AddCommand(newDigestSendCommand(rootOpts))
	cmd.AddCommand(newDigestPreviewCommand(rootOpts))

	return cmd
}

func newDigestSendCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		slug string
		opts digestservice.SendOptions
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send this week's digest to every active subscriber of a vertical",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infra, err := openInfra(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer infra.Close()

			if !infra.StoreAvailable() {
				return NewExitError(ExitCommandError, "DATABASE_URL is not set")
			}
			v, ok := infra.Verticals.BySlug(slug)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown vertical %q (valid: %v)", slug, infra.Verticals.Slugs()))
			}

			result, err := infra.DigestService().Send(cmd.Context(), v, opts)
			if err != nil {
				return WrapExitError(ExitFailure, "send digest", err)
			}

			return newFormatter(rootOpts, cmd.OutOrStdout()).Success(result, func(w io.Writer) {
				fmt.Fprintln(w, result.Message)
				fmt.Fprintf(w, "vertical=%s week=%s listings=%d recipients=%d sent=%d failed=%d\n",
					result.Vertical, result.WeekOf, result.Listings, result.Recipients, result.Sent, result.Failed)
				if result.ArchiveKey != "" {
					fmt.Fprintf(w, "archived to %s\n", result.ArchiveKey)
				}
			})
		},
	}

	cmd.Flags().StringVar(&slug, "vertical", "", "vertical slug")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "count recipients without sending")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "send even if this week's digest already went out")
	_ = cmd.MarkFlagRequired("vertical")

	return cmd
}

func newDigestPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render this week's digest HTML to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infra, err := openInfra(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer infra.Close()

			if !infra.StoreAvailable() {
				return NewExitError(ExitCommandError, "DATABASE_URL is not set")
			}
			v, ok := infra.Verticals.BySlug(slug)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown vertical %q (valid: %v)", slug, infra.Verticals.Slugs()))
			}

			preview, err := infra.DigestService().Build(cmd.Context(), v)
			if err != nil {
				return WrapExitError(ExitFailure, "build digest", err)
			}

			return newFormatter(rootOpts, cmd.OutOrStdout()).Success(preview, func(w io.Writer) {
				fmt.Fprintln(w, preview.HTML)
			})
		},
	}

	cmd.Flags().StringVar(&slug, "vertical", "", "vertical slug")
	_ = cmd.MarkFlagRequired("vertical")

	return cmd
}

// openInfra loads config and connects backing services. Logs go to stderr so
// JSON output stays parseable.
func openInfra(cmd *cobra.Command, rootOpts *RootOptions) (*bootstrap.Infra, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if rootOpts.VerticalsFile != "" {
		cfg.VerticalsFile = rootOpts.VerticalsFile
	}

	log := logger.NewWithWriter(cfg.Env, cmd.ErrOrStderr())
	infra, err := bootstrap.Open(cmd.Context(), cfg, log)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "initialize", err)
	}
	return infra, nil
}
