package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/feed"
	"github.com/briefdeck/briefdeck/internal/layout"
	"github.com/briefdeck/briefdeck/internal/model"
)

var (
	layoutWidth    int
	layoutSort     string
	layoutCategory string
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the masonry column plan for a viewport width",
	Long: `Fetch the analyzed stories, sort and filter them, and print where the
masonry grid places each one for a viewport width in pixels.

Breakpoints: below 640px one column, 640px two, 1024px three, 1536px four.

Examples:
  briefdeck layout --width 1280
  briefdeck layout --width 800 --sort reading --category "AI News"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sortKey := feed.SortImportance
		if cmd.Flags().Changed("sort") {
			k, err := feed.ParseSortKey(layoutSort)
			if err != nil {
				return err
			}
			sortKey = k
		} else if k, err := feed.ParseSortKey(cfg.Layout.DefaultSort); err == nil {
			sortKey = k
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		s, err := newStore(c)
		if err != nil {
			return err
		}
		if err := s.FetchAll(cmd.Context()); err != nil {
			return fmt.Errorf("fetch stories: %w", err)
		}

		items := feed.Project(s.Get().Items(), sortKey, layoutCategory)
		return printPlan(cmd.OutOrStdout(), items, layoutWidth)
	},
}

// printPlan writes the placement of items for a viewport of width pixels.
func printPlan(w io.Writer, items []model.ContentItem, width int) error {
	columns := layout.ColumnsForWidth(width)
	plan := layout.Assign(items, columns)

	fmt.Fprintf(w, "Width %dpx: %d column(s), %d stor%s\n\n", width, plan.Columns, len(items), plural(len(items), "y", "ies"))
	if len(items) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COL\tROW\tTIER\tSCORE\tCATEGORY\tTITLE")
	for c := range plan.Columns {
		for _, p := range plan.Column(c) {
			it := items[p.Index]
			fmt.Fprintf(tw, "%d\t%d\t%s\t%g\t%s\t%s\n",
				p.Column, p.Row, p.Tier, it.Importance, orDash(it.Category), truncate(it.Title, 50))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nColumn sizes: %v\n", plan.Sizes())
	return nil
}

func init() {
	layoutCmd.Flags().IntVar(&layoutWidth, "width", 1280, "viewport width in pixels")
	layoutCmd.Flags().StringVar(&layoutSort, "sort", "importance", "sort key: importance, recent or reading")
	layoutCmd.Flags().StringVar(&layoutCategory, "category", feed.AllCategories, "category filter")
	rootCmd.AddCommand(layoutCmd)
}
