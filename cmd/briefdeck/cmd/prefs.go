package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/remote"
)

var (
	prefsJSON    bool
	prefsLayout  string
	prefsTheme   string
	prefsWeights []string
)

var prefsCmd = &cobra.Command{
	Use:     "prefs",
	Aliases: []string{"preferences"},
	Short:   "Show or change display preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return showPrefs(cmd.Context(), cmd.OutOrStdout(), c, prefsJSON)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change preferences",
	Long: `Change preferences. Unset flags are left unchanged.

Examples:
  briefdeck prefs set --theme dark
  briefdeck prefs set --layout homepage --weight "AI News=1.5" --weight Finance=0.5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := prefsPatchFromFlags(cmd)
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		p, err := c.UpdatePreferences(cmd.Context(), patch)
		if err != nil {
			return fmt.Errorf("update preferences: %w", err)
		}
		printPrefs(cmd.OutOrStdout(), p)
		return nil
	},
}

func prefsPatchFromFlags(cmd *cobra.Command) (model.PreferencePatch, error) {
	var p model.PreferencePatch
	if cmd.Flags().Changed("layout") {
		l := model.LayoutPreference(prefsLayout)
		p.LayoutPreference = &l
	}
	if cmd.Flags().Changed("theme") {
		t := model.Theme(prefsTheme)
		p.Theme = &t
	}
	if len(prefsWeights) > 0 {
		weights, err := parseWeights(prefsWeights)
		if err != nil {
			return p, err
		}
		p.CategoryWeights = weights
	}
	if p.LayoutPreference == nil && p.Theme == nil && p.CategoryWeights == nil {
		return p, fmt.Errorf("nothing to update: set --layout, --theme or --weight")
	}
	return p, p.Validate()
}

// parseWeights parses "Name=weight" pairs.
func parseWeights(pairs []string) (map[string]float64, error) {
	weights := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--weight %q: want Name=weight", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("--weight %q: %w", pair, err)
		}
		weights[name] = w
	}
	return weights, nil
}

func showPrefs(ctx context.Context, w io.Writer, c *remote.Client, asJSON bool) error {
	p, err := c.GetPreferences(ctx)
	if err != nil {
		return fmt.Errorf("get preferences: %w", err)
	}
	if asJSON {
		return writeJSON(w, p)
	}
	printPrefs(w, p)
	return nil
}

func printPrefs(w io.Writer, p *model.UserPreference) {
	fmt.Fprintf(w, "Layout: %s\n", p.LayoutPreference)
	fmt.Fprintf(w, "Theme:  %s\n", p.Theme)
	if len(p.CategoryWeights) == 0 {
		return
	}
	fmt.Fprintln(w, "Category weights:")
	names := make([]string, 0, len(p.CategoryWeights))
	for name := range p.CategoryWeights {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %g\n", name, p.CategoryWeights[name])
	}
}

func init() {
	prefsShowCmd.Flags().BoolVar(&prefsJSON, "json", false, "output as JSON")
	prefsSetCmd.Flags().StringVar(&prefsLayout, "layout", "", "default layout: newspaper or homepage")
	prefsSetCmd.Flags().StringVar(&prefsTheme, "theme", "", "theme: light or dark")
	prefsSetCmd.Flags().StringArrayVar(&prefsWeights, "weight", nil, "category weight as Name=weight (repeatable)")

	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}
