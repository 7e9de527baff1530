package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

func runWithApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func formatCompletion(c models.Completion) string {
	return fmt.Sprintf("%d/%d (%%%d)", c.Done, c.Total, c.Percent())
}

func recordSummary(rec models.ResolvedRecord) string {
	switch {
	case rec.Found():
		if rec.Year > 0 {
			return fmt.Sprintf("%s %s (%d)", rec.ID(), rec.Title, rec.Year)
		}
		return fmt.Sprintf("%s %s", rec.ID(), rec.Title)
	case rec.Unresolved:
		return "unresolved"
	default:
		return "-"
	}
}
