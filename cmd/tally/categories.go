package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/cli"
	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/config"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/service"
	"github.com/Veraticus/the-spice-must-tally/internal/taxonomy"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"taxonomy"},
		Short:   "Manage the keyword taxonomy",
		Long: `List and edit the categories, subcategories and keywords used to classify
transactions. Every user (--user) has their own taxonomy; new users start from the
built-in default. Categories are matched in the order they are listed.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(removeCategoryCmd())
	cmd.AddCommand(keywordCmd())
	cmd.AddCommand(importCategoriesCmd())
	cmd.AddCommand(exportCategoriesCmd())
	cmd.AddCommand(resetCategoriesCmd())
	cmd.AddCommand(usersCmd())

	return cmd
}

// withStore opens the store and makes sure the user has a taxonomy before fn runs.
func withStore(ctx context.Context, fn func(service.TaxonomyStore, *config.Settings) error) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, err := store.LoadOrSeed(ctx, settings.User, model.DefaultTaxonomy()); err != nil {
		return fmt.Errorf("failed to load taxonomy for %q: %w", settings.User, err)
	}
	return fn(store, settings)
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(cmd.Context(), prompt, false)
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories and their keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				t, err := store.LoadTaxonomy(ctx, settings.User)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if t.Len() == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'tally categories add' to create one."))
					return nil
				}

				fmt.Fprintln(out, cli.RenderBox(
					fmt.Sprintf("%s %s taxonomy of %s", cli.FolderIcon, t.Kind(), settings.User),
					cli.RenderTable(taxonomyHeader(t), taxonomyRows(t)),
				))
				return nil
			})
		},
	}
}

func taxonomyHeader(t model.Taxonomy) []string {
	if t.Kind() == model.TaxonomyHierarchical {
		return []string{"#", "Category", "Subcategory", "Keywords"}
	}
	return []string{"#", "Category", "Keywords"}
}

func taxonomyRows(t model.Taxonomy) [][]string {
	keywords := func(k []string) string {
		if len(k) == 0 {
			return cli.SubtleStyle.Render("(none)")
		}
		return strings.Join(k, ", ")
	}

	var rows [][]string
	switch tax := t.(type) {
	case model.FlatTaxonomy:
		for i, c := range tax {
			rows = append(rows, []string{fmt.Sprint(i + 1), c.Name, keywords(c.Keywords)})
		}
	case model.HierarchicalTaxonomy:
		for i, c := range tax {
			if len(c.Subcategories) == 0 {
				rows = append(rows, []string{fmt.Sprint(i + 1), c.Name, "", keywords(nil)})
			}
			for j, s := range c.Subcategories {
				n := ""
				if j == 0 {
					n = fmt.Sprint(i + 1)
				}
				rows = append(rows, []string{n, c.Name, s.Name, keywords(s.Keywords)})
			}
		}
	}
	return rows
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> [subcategory]",
		Short: "Add a category",
		Long:  `Add an empty category, or a subcategory of a category in a hierarchical taxonomy.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			category, subcategory := args[0], optionalArg(args, 1)
			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				if err := store.AddCategory(ctx, settings.User, category, subcategory); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Added "+qualified(category, subcategory)))
				return nil
			})
		},
	}
}

func removeCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <category> [subcategory]",
		Aliases: []string{"rm"},
		Short:   "Remove a category and its keywords",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			category, subcategory := args[0], optionalArg(args, 1)

			ok, err := confirm(cmd, fmt.Sprintf("Remove %s and all of its keywords?", qualified(category, subcategory)))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("Nothing removed."))
				return nil
			}

			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				if subcategory != "" {
					err = store.RemoveSubcategory(ctx, settings.User, category, subcategory)
				} else {
					err = store.RemoveCategory(ctx, settings.User, category)
				}
				if err != nil {
					return explainNotFound(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed "+qualified(category, subcategory)))
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func keywordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keyword",
		Aliases: []string{"keywords"},
		Short:   "Add or remove keywords",
	}

	add := &cobra.Command{
		Use:   "add <category> <keyword>...",
		Short: "Add keywords to a category",
		Long: `Add keywords to a category, creating the category when needed. Keywords match
case-insensitively anywhere in the transaction remarks.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			subcategory, _ := cmd.Flags().GetString("subcategory")
			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				for _, keyword := range args[1:] {
					if err := store.AddKeyword(ctx, settings.User, args[0], subcategory, keyword); err != nil {
						return fmt.Errorf("failed to add %q: %w", keyword, err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %d keywords to %s", len(args)-1, qualified(args[0], subcategory))))
				return nil
			})
		},
	}
	add.Flags().StringP("subcategory", "s", "", "subcategory (hierarchical taxonomies)")

	remove := &cobra.Command{
		Use:     "remove <category> <keyword>...",
		Aliases: []string{"rm"},
		Short:   "Remove keywords from a category",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			subcategory, _ := cmd.Flags().GetString("subcategory")
			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				for _, keyword := range args[1:] {
					if err := store.RemoveKeyword(ctx, settings.User, args[0], subcategory, keyword); err != nil {
						return fmt.Errorf("failed to remove %q: %w", keyword, explainNotFound(err))
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed %d keywords from %s", len(args)-1, qualified(args[0], subcategory))))
				return nil
			})
		},
	}
	remove.Flags().StringP("subcategory", "s", "", "subcategory (hierarchical taxonomies)")

	cmd.AddCommand(add, remove)
	return cmd
}

func importCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the taxonomy with a JSON or YAML file",
		Long: `Replace the user's taxonomy with the contents of a JSON or YAML file. The file maps
categories to keyword lists, or categories to subcategories to keyword lists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := taxonomy.LoadFile(args[0])
			if err != nil {
				return err
			}

			ok, err := confirm(cmd, fmt.Sprintf("Replace the current taxonomy with %d categories from %s?", t.Len(), args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("Taxonomy unchanged."))
				return nil
			}

			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				if err := store.SaveTaxonomy(ctx, settings.User, t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d %s categories", t.Len(), t.Kind())))
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func exportCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the taxonomy to a JSON or YAML file",
		Long:  `Write the user's taxonomy to a file, or to stdout when no file is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, _ := cmd.Flags().GetString("format")

			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				t, err := store.LoadTaxonomy(ctx, settings.User)
				if err != nil {
					return err
				}

				if len(args) == 0 || args[0] == "-" {
					return taxonomy.Encode(cmd.OutOrStdout(), t, taxonomy.Format(format))
				}
				if err := taxonomy.SaveFile(args[0], t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported taxonomy to "+args[0]))
				return nil
			})
		},
	}
	cmd.Flags().StringP("format", "f", string(taxonomy.FormatJSON), "stdout format (json, yaml)")
	return cmd
}

func resetCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ok, err := confirm(cmd, "Discard the current taxonomy and restore the defaults?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("Taxonomy unchanged."))
				return nil
			}

			return withStore(ctx, func(store service.TaxonomyStore, settings *config.Settings) error {
				if err := store.SaveTaxonomy(ctx, settings.User, model.DefaultTaxonomy()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored the default taxonomy"))
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users with a stored taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			owners, err := store.ListOwners(ctx)
			if err != nil {
				return err
			}
			for _, owner := range owners {
				fmt.Fprintln(cmd.OutOrStdout(), owner)
			}
			return nil
		},
	}
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func qualified(category, subcategory string) string {
	if subcategory == "" {
		return fmt.Sprintf("%q", category)
	}
	return fmt.Sprintf("%q / %q", category, subcategory)
}

// explainNotFound tells the user the entry to remove does not exist.
func explainNotFound(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError("no such entry", err)
	}
	return err
}
