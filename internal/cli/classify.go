package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"exits_backend/internal/classifier"

	"github.com/spf13/cobra"
)

const (
	reasonBlocked    = "blocked"
	reasonNotAllowed = "not_allowed"
	reasonDuplicate  = "duplicate"
)

// ListingInput is one scraped listing as read by classify.
type ListingInput struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (l ListingInput) ClassifierText() string {
	return classifier.Text(l.Title, l.Description)
}

func (l ListingInput) ClassifierKey() string {
	return classifier.DedupKey(l.URL, l.ID)
}

// ClassifyVerdict explains the outcome for one input listing.
type ClassifyVerdict struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Kept    bool   `json:"kept"`
	Reason  string `json:"reason,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// ClassifyResult is the classify command output.
type ClassifyResult struct {
	Vertical string            `json:"vertical"`
	Kept     int               `json:"kept"`
	Dropped  int               `json:"dropped"`
	Verdicts []ClassifyVerdict `json:"verdicts"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "classify [listings.json]",
		Short: "Run a vertical's listing rules over a JSON array of listings",
		Long: `Reads a JSON array of {id, url, title, description} objects from the
given file, or stdin when no file is given, and reports which listings the
vertical keeps and why the others are dropped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, v, err := rootOpts.resolveVertical(slug)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "open listings", err)
				}
				defer f.Close()
				in = f
			}

			var items []ListingInput
			if err := json.NewDecoder(in).Decode(&items); err != nil {
				return WrapExitError(ExitCommandError, "decode listings", err)
			}

			result := Classify(v.Slug, v.Classifier(), items)
			return newFormatter(rootOpts, cmd.OutOrStdout()).Success(result, func(w io.Writer) {
				writeClassify(w, result)
			})
		},
	}

	cmd.Flags().StringVar(&slug, "vertical", "", "vertical whose rules apply (default vertical when empty)")

	return cmd
}

// Classify explains classifier.Filter item by item. The kept set is exactly
// what Filter returns for the same input.
func Classify(slug string, c *classifier.Classifier, items []ListingInput) ClassifyResult {
	result := ClassifyResult{Vertical: slug, Verdicts: make([]ClassifyVerdict, 0, len(items))}
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		verdict := ClassifyVerdict{ID: item.ID, Title: item.Title}
		decision := c.Match(item.ClassifierText())

		switch {
		case decision.BlockedBy != "":
			verdict.Reason, verdict.Pattern = reasonBlocked, decision.BlockedBy
		case !decision.Included:
			verdict.Reason = reasonNotAllowed
		default:
			key := item.ClassifierKey()
			if _, dup := seen[key]; key != "" && dup {
				verdict.Reason = reasonDuplicate
				break
			}
			if key != "" {
				seen[key] = struct{}{}
			}
			verdict.Kept, verdict.Pattern = true, decision.Allowed
		}

		if verdict.Kept {
			result.Kept++
		} else {
			result.Dropped++
		}
		result.Verdicts = append(result.Verdicts, verdict)
	}
	return result
}

func writeClassify(w io.Writer, r ClassifyResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRESULT\tREASON\tTITLE")
	for _, v := range r.Verdicts {
		status := "kept"
		reason := v.Pattern
		if !v.Kept {
			status = "dropped"
			reason = v.Reason
			if v.Pattern != "" {
				reason += " (" + v.Pattern + ")"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, status, reason, v.Title)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%s: %d kept, %d dropped\n", r.Vertical, r.Kept, r.Dropped)
}
