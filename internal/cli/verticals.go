package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// VerticalSummary is one row of the verticals command.
type VerticalSummary struct {
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Default         bool     `json:"default"`
	PrimaryHostname string   `json:"primary_hostname"`
	Hostnames       []string `json:"hostnames"`
	AllowRules      int      `json:"allow_rules"`
	BlockRules      int      `json:"block_rules"`
}

// NewVerticalsCommand creates the verticals command.
func NewVerticalsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verticals",
		Short: "List configured verticals and their hostnames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.registry()
			if err != nil {
				return WrapExitError(ExitCommandError, "load verticals", err)
			}

			def := reg.Default()
			all := reg.All()
			out := make([]VerticalSummary, 0, len(all))
			for _, v := range all {
				out = append(out, VerticalSummary{
					Slug:            v.Slug,
					Name:            v.Name,
					Default:         v.Slug == def.Slug,
					PrimaryHostname: reg.PrimaryHostname(v.Slug),
					Hostnames:       reg.Hostnames(v.Slug),
					AllowRules:      len(v.Rules.Allow),
					BlockRules:      len(v.Rules.Block),
				})
			}

			return newFormatter(rootOpts, cmd.OutOrStdout()).Success(out, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tNAME\tPRIMARY HOST\tHOSTNAMES\tRULES")
				for _, v := range out {
					slug := v.Slug
					if v.Default {
						slug += "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t+%d/-%d\n",
						slug, v.Name, v.PrimaryHostname, strings.Join(v.Hostnames, ","), v.AllowRules, v.BlockRules)
				}
				_ = tw.Flush()
			})
		},
	}
}
