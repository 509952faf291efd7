package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/existflow/carnet/internal/api"
	"github.com/existflow/carnet/internal/model"
	"github.com/existflow/carnet/internal/query"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories", "cat"},
	Short:   "Manage categories",
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	RunE:    runCategoryList,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryEditCmd = &cobra.Command{
	Use:   "edit <id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoryEdit,
}

var categoryRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a category",
	Args:    cobra.ExactArgs(1),
	RunE:    runCategoryRm,
}

var categoryImageCmd = &cobra.Command{
	Use:   "image <id> [file]",
	Short: "Upload or remove a category image",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCategoryImage,
}

var categoryCountCmd = &cobra.Command{
	Use:   "count <id>",
	Short: "Show how many recipes a category holds",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryCount,
}

func init() {
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryEditCmd)
	categoryCmd.AddCommand(categoryRmCmd)
	categoryCmd.AddCommand(categoryImageCmd)
	categoryCmd.AddCommand(categoryCountCmd)

	categoryAddCmd.Flags().String("icon", "", "Emoji icon")
	categoryEditCmd.Flags().String("icon", "", "Emoji icon")
	categoryImageCmd.Flags().Bool("rm", false, "Remove the image instead of uploading")
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	key := query.Key("categories", "list")
	v, err := app.Cache.Fetch(cmd.Context(), key, func(ctx context.Context) (any, error) {
		return app.API.ListCategories(ctx)
	})
	if err != nil {
		return display(err)
	}
	cats := v.([]model.Category)

	if len(cats) == 0 {
		fmt.Println("No categories yet. Add one with: carnet category add <name>")
		return nil
	}

	fmt.Printf("\n📁 Categories (%d)\n", len(cats))
	fmt.Println(strings.Repeat("─", 60))
	for _, cat := range cats {
		shortID := cat.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		icon := cat.Icon
		if icon == "" {
			icon = "  "
		}
		fmt.Printf("  %-8s  %s %s\n", shortID, icon, cat.Name)
	}
	fmt.Println()
	return nil
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	icon, _ := cmd.Flags().GetString("icon")
	cat, err := app.API.CreateCategory(cmd.Context(), token, api.CategoryInput{Name: args[0], Icon: icon})
	if err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("categories") + "/")

	fmt.Printf("✅ Category created: %s (%s)\n", cat.Name, cat.ID)
	return nil
}

func runCategoryEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	icon, _ := cmd.Flags().GetString("icon")
	cat, err := app.API.UpdateCategory(cmd.Context(), token, args[0], api.CategoryInput{Name: args[1], Icon: icon})
	if err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("categories") + "/")

	fmt.Printf("✅ Category updated: %s\n", cat.Name)
	return nil
}

func runCategoryRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	if app.Config.ConfirmDelete {
		if readLine(fmt.Sprintf("Delete category %s? [y/N] ", args[0])) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := app.API.DeleteCategory(cmd.Context(), token, args[0]); err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("categories") + "/")

	fmt.Println("✅ Category deleted.")
	return nil
}

func runCategoryImage(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	if rm, _ := cmd.Flags().GetBool("rm"); rm {
		if err := app.API.DeleteCategoryImage(cmd.Context(), token, args[0]); err != nil {
			return display(err)
		}
		app.Cache.InvalidatePrefix(query.Key("categories") + "/")
		fmt.Println("✅ Image removed.")
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("usage: carnet category image <id> <file>")
	}

	file, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	cat, err := app.API.UploadCategoryImage(cmd.Context(), token, args[0], file.Name(), file)
	if err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("categories") + "/")

	fmt.Printf("✅ Image uploaded: %s\n", cat.ImageURL)
	return nil
}

func runCategoryCount(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	count, err := app.API.CategoryRecipeCount(cmd.Context(), args[0])
	if err != nil {
		return display(err)
	}

	fmt.Printf("%d recipe(s)\n", count)
	return nil
}
