package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/existflow/carnet/internal/api"
	"github.com/existflow/carnet/internal/model"
	"github.com/existflow/carnet/internal/query"
	"github.com/spf13/cobra"
)

var recipeCmd = &cobra.Command{
	Use:     "recipe",
	Aliases: []string{"recipes"},
	Short:   "Manage recipes",
	Long: `Browse and manage recipes.

Examples:
  carnet recipe list
  carnet recipe list --category desserts --search chocolat
  carnet recipe show 1a2b3c4d
  carnet recipe add --title "Tarte aux pommes" --category desserts`,
}

var recipeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recipes",
	RunE:    runRecipeList,
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recipe in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipeShow,
}

var recipeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a recipe",
	RunE:  runRecipeAdd,
}

var recipeEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipeEdit,
}

var recipeRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a recipe",
	Args:    cobra.ExactArgs(1),
	RunE:    runRecipeRm,
}

var recipeImageCmd = &cobra.Command{
	Use:   "image <id> [file]",
	Short: "Upload or remove a recipe photo",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRecipeImage,
}

func init() {
	recipeCmd.AddCommand(recipeListCmd)
	recipeCmd.AddCommand(recipeShowCmd)
	recipeCmd.AddCommand(recipeAddCmd)
	recipeCmd.AddCommand(recipeEditCmd)
	recipeCmd.AddCommand(recipeRmCmd)
	recipeCmd.AddCommand(recipeImageCmd)

	recipeListCmd.Flags().String("category", "", "Filter by category ID")
	recipeListCmd.Flags().String("search", "", "Search in title and description")
	recipeListCmd.Flags().String("author", "", "Filter by author ID")
	recipeListCmd.Flags().Int("page", 1, "Page number")
	recipeListCmd.Flags().Int("per-page", 20, "Recipes per page")
	recipeListCmd.Flags().Bool("mine", false, "Only my recipes")

	for _, c := range []*cobra.Command{recipeAddCmd, recipeEditCmd} {
		c.Flags().String("title", "", "Recipe title")
		c.Flags().String("category", "", "Category ID")
		c.Flags().String("description", "", "Short description")
		c.Flags().Int("servings", 0, "Number of servings")
		c.Flags().Int("prep", 0, "Preparation time in minutes")
		c.Flags().Int("cook", 0, "Cooking time in minutes")
		c.Flags().StringArray("ingredient", nil, "Ingredient as name:quantity:unit (repeatable)")
		c.Flags().StringArray("step", nil, "Instruction step (repeatable, in order)")
		c.Flags().StringArray("prereq", nil, "Prerequisite (repeatable)")
	}

	recipeImageCmd.Flags().Bool("rm", false, "Remove the photo instead of uploading")
}

// recipeFilterFromFlags builds the filter from the flags that were
// actually set, so unset flags stay out of the query string
func recipeFilterFromFlags(cmd *cobra.Command, app *App, ctx context.Context) (api.RecipeFilter, error) {
	var filter api.RecipeFilter

	if cmd.Flags().Changed("category") {
		v, _ := cmd.Flags().GetString("category")
		filter.CategoryID = &v
	}
	if cmd.Flags().Changed("search") {
		v, _ := cmd.Flags().GetString("search")
		filter.Search = &v
	}
	if cmd.Flags().Changed("author") {
		v, _ := cmd.Flags().GetString("author")
		filter.AuthorID = &v
	}
	if mine, _ := cmd.Flags().GetBool("mine"); mine {
		app.Store.Init(ctx)
		current := app.Store.Current()
		if !current.IsAuthenticated {
			return filter, fmt.Errorf("non connecté. Lancez 'carnet auth login'")
		}
		filter.AuthorID = &current.User.ID
	}
	if cmd.Flags().Changed("page") {
		v, _ := cmd.Flags().GetInt("page")
		filter.Page = &v
	}
	if cmd.Flags().Changed("per-page") {
		v, _ := cmd.Flags().GetInt("per-page")
		filter.PerPage = &v
	}
	return filter, nil
}

func runRecipeList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	filter, err := recipeFilterFromFlags(cmd, app, cmd.Context())
	if err != nil {
		return err
	}

	key := query.Key("recipes", "list", filter.Values().Encode())
	v, err := app.Cache.Fetch(cmd.Context(), key, func(ctx context.Context) (any, error) {
		return app.API.ListRecipes(ctx, filter)
	})
	if err != nil {
		return display(err)
	}
	page := v.(*model.RecipePage)

	if len(page.Items) == 0 {
		fmt.Println("No recipes found. Add one with: carnet recipe add")
		return nil
	}

	fmt.Printf("\n🍲 Recipes (%d total, page %d)\n", page.Total, page.Page)
	fmt.Println(strings.Repeat("─", 60))
	for _, r := range page.Items {
		printRecipeLine(r)
	}
	fmt.Println()
	return nil
}

func printRecipeLine(r model.Recipe) {
	shortID := r.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	title := r.Title
	if len(title) > 40 {
		title = title[:37] + "..."
	}

	timing := ""
	if r.TotalMinutes() > 0 {
		timing = fmt.Sprintf("%d min", r.TotalMinutes())
	}

	fmt.Printf("  %-8s  %-40s  %s\n", shortID, title, timing)
}

func runRecipeShow(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	recipe, err := app.API.GetRecipe(cmd.Context(), args[0])
	if err != nil {
		return display(err)
	}

	fmt.Printf("\n🍲 %s\n", recipe.Title)
	fmt.Println(strings.Repeat("─", 60))
	if recipe.Description != "" {
		fmt.Println(recipe.Description)
	}
	if recipe.Servings > 0 {
		fmt.Printf("Servings: %d\n", recipe.Servings)
	}
	if recipe.PrepMinutes > 0 {
		fmt.Printf("Prep:     %d min\n", recipe.PrepMinutes)
	}
	if recipe.CookMinutes > 0 {
		fmt.Printf("Cook:     %d min\n", recipe.CookMinutes)
	}

	if len(recipe.Prerequisites) > 0 {
		fmt.Println("\nBefore you start:")
		for _, p := range recipe.Prerequisites {
			fmt.Printf("  • %s\n", p.Text)
		}
	}

	if len(recipe.Ingredients) > 0 {
		fmt.Println("\nIngredients:")
		for _, ing := range recipe.Ingredients {
			if ing.Quantity > 0 {
				fmt.Printf("  • %g %s %s\n", ing.Quantity, ing.Unit, ing.Name)
			} else {
				fmt.Printf("  • %s\n", ing.Name)
			}
		}
	}

	if len(recipe.Steps) > 0 {
		fmt.Println("\nSteps:")
		for _, step := range recipe.Steps {
			fmt.Printf("  %d. %s\n", step.Position, step.Text)
		}
	}
	fmt.Println()
	return nil
}

// parseIngredient parses "name:quantity:unit"; quantity and unit are
// optional
func parseIngredient(s string) (model.Ingredient, error) {
	parts := strings.SplitN(s, ":", 3)
	ing := model.Ingredient{Name: strings.TrimSpace(parts[0])}
	if ing.Name == "" {
		return ing, fmt.Errorf("ingredient name is empty in %q", s)
	}
	if len(parts) > 1 && parts[1] != "" {
		qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return ing, fmt.Errorf("bad quantity in %q", s)
		}
		ing.Quantity = qty
	}
	if len(parts) > 2 {
		ing.Unit = strings.TrimSpace(parts[2])
	}
	return ing, nil
}

func recipeInputFromFlags(cmd *cobra.Command, base *model.Recipe) (api.RecipeInput, error) {
	input := api.RecipeInput{}
	if base != nil {
		input = api.RecipeInput{
			Title:         base.Title,
			Description:   base.Description,
			CategoryID:    base.CategoryID,
			Servings:      base.Servings,
			PrepMinutes:   base.PrepMinutes,
			CookMinutes:   base.CookMinutes,
			Ingredients:   base.Ingredients,
			Steps:         base.Steps,
			Prerequisites: base.Prerequisites,
		}
	}

	if cmd.Flags().Changed("title") {
		input.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("category") {
		input.CategoryID, _ = cmd.Flags().GetString("category")
	}
	if cmd.Flags().Changed("description") {
		input.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("servings") {
		input.Servings, _ = cmd.Flags().GetInt("servings")
	}
	if cmd.Flags().Changed("prep") {
		input.PrepMinutes, _ = cmd.Flags().GetInt("prep")
	}
	if cmd.Flags().Changed("cook") {
		input.CookMinutes, _ = cmd.Flags().GetInt("cook")
	}
	if cmd.Flags().Changed("ingredient") {
		raw, _ := cmd.Flags().GetStringArray("ingredient")
		input.Ingredients = nil
		for _, s := range raw {
			ing, err := parseIngredient(s)
			if err != nil {
				return input, err
			}
			input.Ingredients = append(input.Ingredients, ing)
		}
	}
	if cmd.Flags().Changed("step") {
		raw, _ := cmd.Flags().GetStringArray("step")
		input.Steps = nil
		for i, s := range raw {
			input.Steps = append(input.Steps, model.Step{Position: i + 1, Text: s})
		}
	}
	if cmd.Flags().Changed("prereq") {
		raw, _ := cmd.Flags().GetStringArray("prereq")
		input.Prerequisites = nil
		for _, s := range raw {
			input.Prerequisites = append(input.Prerequisites, model.Prerequisite{Text: s})
		}
	}
	return input, nil
}

func runRecipeAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	input, err := recipeInputFromFlags(cmd, nil)
	if err != nil {
		return err
	}
	if input.Title == "" {
		return fmt.Errorf("--title is required")
	}
	if input.CategoryID == "" {
		return fmt.Errorf("--category is required")
	}

	recipe, err := app.API.CreateRecipe(cmd.Context(), token, input)
	if err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("recipes") + "/")

	fmt.Printf("✅ Recipe created: %s (%s)\n", recipe.Title, recipe.ID)
	return nil
}

func runRecipeEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	current, err := app.API.GetRecipe(cmd.Context(), args[0])
	if err != nil {
		return display(err)
	}

	input, err := recipeInputFromFlags(cmd, current)
	if err != nil {
		return err
	}

	recipe, err := app.API.UpdateRecipe(cmd.Context(), token, args[0], input)
	if err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("recipes") + "/")

	fmt.Printf("✅ Recipe updated: %s\n", recipe.Title)
	return nil
}

func runRecipeRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	if app.Config.ConfirmDelete {
		if readLine(fmt.Sprintf("Delete recipe %s? [y/N] ", args[0])) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := app.API.DeleteRecipe(cmd.Context(), token, args[0]); err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("recipes") + "/")

	fmt.Println("✅ Recipe deleted.")
	return nil
}

func runRecipeImage(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	if rm, _ := cmd.Flags().GetBool("rm"); rm {
		if err := app.API.DeleteRecipeImage(cmd.Context(), token, args[0]); err != nil {
			return display(err)
		}
		app.Cache.InvalidatePrefix(query.Key("recipes") + "/")
		fmt.Println("✅ Photo removed.")
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("usage: carnet recipe image <id> <file>")
	}

	file, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	recipe, err := app.API.UploadRecipeImage(cmd.Context(), token, args[0], file.Name(), file)
	if err != nil {
		return display(err)
	}
	app.Cache.InvalidatePrefix(query.Key("recipes") + "/")

	fmt.Printf("✅ Photo uploaded: %s\n", recipe.ImageURL)
	return nil
}
