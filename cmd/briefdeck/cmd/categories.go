package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/briefdeck/briefdeck/internal/model"
	"github.com/briefdeck/briefdeck/internal/store"
)

var (
	categoriesJSON bool
	categoryInput  model.CategoryInput
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "Manage content categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newCategoryStore(cmd.Context())
		if err != nil {
			return err
		}
		return listCategories(cmd.OutOrStdout(), s.Get().Categories, categoriesJSON)
	},
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a category",
	Long: `Create a category. Category names must be unique.

Without --name on an interactive terminal, a form asks for the fields.

Examples:
  briefdeck categories create --name "Research" --color "#0EA5E9"
  briefdeck categories create`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := categoryInput
		if !cmd.Flags().Changed("name") {
			if !isInteractive() {
				return fmt.Errorf("--name is required when not running in a terminal")
			}
			if err := categoryForm(&in).RunWithContext(cmd.Context()); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return fmt.Errorf("category form: %w", err)
			}
		}

		s, err := newCategoryStore(cmd.Context())
		if err != nil {
			return err
		}
		return createCategory(cmd.Context(), cmd.OutOrStdout(), s, in)
	},
}

var categoriesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a category",
	Long: `Update the given fields of a category. Unset flags are left unchanged.

Examples:
  briefdeck categories update cat-003 --color "#F59E0B"
  briefdeck categories update cat-003 --name "Markets"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := categoryPatchFromFlags(cmd)
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: set at least one of --name, --color, --icon, --description")
		}
		s, err := newCategoryStore(cmd.Context())
		if err != nil {
			return err
		}
		c, err := s.UpdateCategory(cmd.Context(), args[0], patch)
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newCategoryStore(cmd.Context())
		if err != nil {
			return err
		}
		if err := s.DeleteCategory(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
		return nil
	},
}

// newCategoryStore returns a store with categories loaded, so name
// uniqueness is checked before any mutation is sent.
func newCategoryStore(ctx context.Context) (*store.Store, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	s, err := newStore(c)
	if err != nil {
		return nil, err
	}
	if err := s.FetchCategories(ctx); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return s, nil
}

func listCategories(w io.Writer, categories []model.Category, asJSON bool) error {
	if asJSON {
		if categories == nil {
			categories = []model.Category{}
		}
		return writeJSON(w, categories)
	}
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories. Use 'briefdeck categories create' to add one.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tICON\tDESCRIPTION")
	fmt.Fprintln(tw, "──\t────\t─────\t────\t───────────")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, orDash(c.Color), orDash(c.Icon), truncate(orDash(c.Description), 50))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d categor%s\n", len(categories), plural(len(categories), "y", "ies"))
	return nil
}

func createCategory(ctx context.Context, w io.Writer, s *store.Store, in model.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	c, err := s.CreateCategory(ctx, in)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	fmt.Fprintf(w, "Created category %s (%s)\n", c.Name, c.ID)
	return nil
}

// categoryForm asks for the fields of a new category, starting from in.
func categoryForm(in *model.CategoryInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&in.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Description("Hex color such as #6366F1").
				Value(&in.Color),
			huh.NewInput().
				Title("Icon").
				Value(&in.Icon),
			huh.NewText().
				Title("Description").
				Value(&in.Description),
		),
	)
}

func categoryPatchFromFlags(cmd *cobra.Command) model.CategoryPatch {
	var p model.CategoryPatch
	if cmd.Flags().Changed("name") {
		p.Name = &categoryInput.Name
	}
	if cmd.Flags().Changed("color") {
		p.Color = &categoryInput.Color
	}
	if cmd.Flags().Changed("icon") {
		p.Icon = &categoryInput.Icon
	}
	if cmd.Flags().Changed("description") {
		p.Description = &categoryInput.Description
	}
	return p
}

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	for _, c := range []*cobra.Command{categoriesCreateCmd, categoriesUpdateCmd} {
		c.Flags().StringVar(&categoryInput.Name, "name", "", "category name")
		c.Flags().StringVar(&categoryInput.Color, "color", "", "hex color, e.g. #6366F1")
		c.Flags().StringVar(&categoryInput.Icon, "icon", "", "icon name")
		c.Flags().StringVar(&categoryInput.Description, "description", "", "description")
	}
	categoriesListCmd.Flags().BoolVar(&categoriesJSON, "json", false, "output as JSON")

	categoriesCmd.AddCommand(categoriesListCmd, categoriesCreateCmd, categoriesUpdateCmd, categoriesDeleteCmd)
	rootCmd.AddCommand(categoriesCmd)
}
