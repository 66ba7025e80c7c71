package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/remote"
)

var (
	emailsJSON   bool
	emailsSkip   int
	emailsLimit  int
	emailsStatus string
)

var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "List, show and analyze emails",
}

var emailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emails",
	Long: `List emails known to the backend, newest first.

Examples:
  briefdeck emails list
  briefdeck emails list --status pending --limit 20
  briefdeck emails list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := emailFilterFromFlags(cmd)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		return listEmails(cmd.Context(), cmd.OutOrStdout(), c, filter, emailsJSON)
	},
}

var emailsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return showEmail(cmd.Context(), cmd.OutOrStdout(), c, args[0], emailsJSON)
	},
}

var emailsAnalyzeCmd = &cobra.Command{
	Use:   "analyze <id>",
	Short: "Ask the backend to analyze an email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return analyzeEmail(cmd.Context(), cmd.OutOrStdout(), c, args[0])
	},
}

// emailFilterFromFlags builds the listing filter. Only flags the user set
// are sent, so the backend applies its own defaults otherwise.
func emailFilterFromFlags(cmd *cobra.Command) (model.EmailFilter, error) {
	var f model.EmailFilter
	if cmd.Flags().Changed("skip") {
		if emailsSkip < 0 {
			return f, fmt.Errorf("--skip must not be negative")
		}
		f.Skip = &emailsSkip
	}
	if cmd.Flags().Changed("limit") {
		if emailsLimit < 1 {
			return f, fmt.Errorf("--limit must be at least 1")
		}
		f.Limit = &emailsLimit
	}
	switch emailsStatus {
	case "", "all":
	case "processed":
		processed := true
		f.Processed = &processed
	case "pending":
		processed := false
		f.Processed = &processed
	default:
		return f, fmt.Errorf("--status must be all, processed or pending, got %q", emailsStatus)
	}
	return f, nil
}

func listEmails(ctx context.Context, w io.Writer, c *remote.Client, filter model.EmailFilter, asJSON bool) error {
	emails, err := c.ListEmails(ctx, filter)
	if err != nil {
		return fmt.Errorf("list emails: %w", err)
	}
	if asJSON {
		return writeJSON(w, emails)
	}
	if len(emails) == 0 {
		fmt.Fprintln(w, "No emails found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECEIVED\tSTATUS\tFROM\tSUBJECT")
	fmt.Fprintln(tw, "──\t────────\t──────\t────\t───────")
	for _, e := range emails {
		status := "pending"
		if e.Processed {
			status = "analyzed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.ReceivedAt.Local().Format("2006-01-02 15:04"), status,
			truncate(e.DisplaySender(), 30), truncate(e.Subject, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d email(s)\n", len(emails))
	return nil
}

func showEmail(ctx context.Context, w io.Writer, c *remote.Client, id string, asJSON bool) error {
	e, err := c.GetEmail(ctx, id)
	if err != nil {
		return fmt.Errorf("get email: %w", err)
	}
	if asJSON {
		return writeJSON(w, e)
	}

	fmt.Fprintf(w, "ID:       %s\n", e.ID)
	fmt.Fprintf(w, "Subject:  %s\n", e.Subject)
	if e.SenderName != "" {
		fmt.Fprintf(w, "From:     %s <%s>\n", e.SenderName, e.SenderEmail)
	} else {
		fmt.Fprintf(w, "From:     %s\n", e.SenderEmail)
	}
	fmt.Fprintf(w, "Received: %s\n", e.ReceivedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(w, "Analyzed: %t\n", e.Processed)
	return nil
}

func analyzeEmail(ctx context.Context, w io.Writer, c *remote.Client, id string) error {
	ack, err := c.AnalyzeEmail(ctx, id)
	if err != nil {
		return fmt.Errorf("analyze email: %w", err)
	}
	msg := "analysis requested"
	if m, ok := ack.Field("message"); ok {
		var s string
		if m.Decode(&s) == nil && s != "" {
			msg = s
		}
	}
	fmt.Fprintf(w, "%s: %s\n", id, msg)
	return nil
}

// truncate shortens s to at most n runes for table output.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func init() {
	emailsListCmd.Flags().IntVar(&emailsSkip, "skip", 0, "number of emails to skip")
	emailsListCmd.Flags().IntVar(&emailsLimit, "limit", 50, "maximum number of emails")
	emailsListCmd.Flags().StringVar(&emailsStatus, "status", "all", "filter by status: all, processed or pending")
	emailsListCmd.Flags().BoolVar(&emailsJSON, "json", false, "output as JSON")
	emailsShowCmd.Flags().BoolVar(&emailsJSON, "json", false, "output as JSON")

	emailsCmd.AddCommand(emailsListCmd, emailsShowCmd, emailsAnalyzeCmd)
	rootCmd.AddCommand(emailsCmd)
}
