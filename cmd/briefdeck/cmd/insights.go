package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/remote"
)

const dateLayout = "2006-01-02"

var (
	insightsJSON bool
	summaryDate  string
	trendDays    int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show or generate the daily summary",
}

var summaryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the daily summary",
	Long: `Show the generated summary for a day (default: today).

Examples:
  briefdeck summary show
  briefdeck summary show --date 2026-03-09`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDateFlag(summaryDate)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		return showSummary(cmd.Context(), cmd.OutOrStdout(), c, day, insightsJSON)
	},
}

var summaryGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the daily summary",
	Long: `Ask the backend to (re)generate the summary for a day (default: today)
from the emails analyzed so far.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDateFlag(summaryDate)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		return generateSummary(cmd.Context(), cmd.OutOrStdout(), c, day)
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show email analytics",
}

var analyticsOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show totals and the category distribution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return showOverview(cmd.Context(), cmd.OutOrStdout(), c, insightsJSON)
	},
}

var analyticsTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show emails received per day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if trendDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		return showTrends(cmd.Context(), cmd.OutOrStdout(), c, trendDays, insightsJSON)
	},
}

// parseDateFlag parses a YYYY-MM-DD flag value; empty means today.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return &t, nil
}

func showSummary(ctx context.Context, w io.Writer, c *remote.Client, day *time.Time, asJSON bool) error {
	s, err := c.GetDailySummary(ctx, day)
	if err != nil {
		return fmt.Errorf("get summary: %w", err)
	}
	if asJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "Daily summary for %s (%d emails)\n\n", s.Date, s.TotalEmails)
	fmt.Fprintln(w, strings.TrimSpace(s.ContentMarkdown))
	return nil
}

func generateSummary(ctx context.Context, w io.Writer, c *remote.Client, day *time.Time) error {
	ack, err := c.GenerateSummary(ctx, day)
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	var resp struct {
		Message string `json:"message"`
		Date    string `json:"date"`
	}
	if err := ack.Decode(&resp); err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	fmt.Fprintf(w, "%s (%s)\n", resp.Message, resp.Date)
	return nil
}

type overview struct {
	TotalEmails          int     `json:"total_emails"`
	ProcessedEmails      int     `json:"processed_emails"`
	ProcessingRate       float64 `json:"processing_rate"`
	EmailsThisWeek       int     `json:"emails_this_week"`
	CategoryDistribution []struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	} `json:"category_distribution"`
}

func showOverview(ctx context.Context, w io.Writer, c *remote.Client, asJSON bool) error {
	blob, err := c.AnalyticsOverview(ctx)
	if err != nil {
		return fmt.Errorf("analytics overview: %w", err)
	}
	if asJSON {
		return writeBlob(w, blob)
	}
	var ov overview
	if err := blob.Decode(&ov); err != nil {
		return fmt.Errorf("analytics overview: %w", err)
	}

	fmt.Fprintf(w, "Total emails:     %d\n", ov.TotalEmails)
	fmt.Fprintf(w, "Analyzed:         %d (%.1f%%)\n", ov.ProcessedEmails, ov.ProcessingRate)
	fmt.Fprintf(w, "This week:        %d\n", ov.EmailsThisWeek)
	if len(ov.CategoryDistribution) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSTORIES")
	for _, d := range ov.CategoryDistribution {
		fmt.Fprintf(tw, "%s\t%d\n", d.Category, d.Count)
	}
	return tw.Flush()
}

func showTrends(ctx context.Context, w io.Writer, c *remote.Client, days int, asJSON bool) error {
	blob, err := c.AnalyticsTrends(ctx, days)
	if err != nil {
		return fmt.Errorf("analytics trends: %w", err)
	}
	if asJSON {
		return writeBlob(w, blob)
	}
	var trends struct {
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		DailyTrends []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"daily_trends"`
	}
	if err := blob.Decode(&trends); err != nil {
		return fmt.Errorf("analytics trends: %w", err)
	}

	fmt.Fprintf(w, "Emails per day, %s to %s\n\n", trends.StartDate, trends.EndDate)
	if len(trends.DailyTrends) == 0 {
		fmt.Fprintln(w, "No emails in this period.")
		return nil
	}
	for _, d := range trends.DailyTrends {
		fmt.Fprintf(w, "%s  %3d  %s\n", d.Date, d.Count, strings.Repeat("█", min(d.Count, 60)))
	}
	return nil
}

// writeBlob re-indents a raw JSON payload.
func writeBlob(w io.Writer, b model.Blob) error {
	var v any
	if err := b.Decode(&v); err != nil {
		return err
	}
	return writeJSON(w, v)
}

func init() {
	for _, c := range []*cobra.Command{summaryShowCmd, summaryGenerateCmd} {
		c.Flags().StringVar(&summaryDate, "date", "", "day as YYYY-MM-DD (default: today)")
	}
	summaryShowCmd.Flags().BoolVar(&insightsJSON, "json", false, "output as JSON")
	analyticsOverviewCmd.Flags().BoolVar(&insightsJSON, "json", false, "output as JSON")
	analyticsTrendsCmd.Flags().BoolVar(&insightsJSON, "json", false, "output as JSON")
	analyticsTrendsCmd.Flags().IntVar(&trendDays, "days", 7, "number of days")

	summaryCmd.AddCommand(summaryShowCmd, summaryGenerateCmd)
	analyticsCmd.AddCommand(analyticsOverviewCmd, analyticsTrendsCmd)
	rootCmd.AddCommand(summaryCmd, analyticsCmd)
}
