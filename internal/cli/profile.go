package cli

import (
	"fmt"
	"os"

	"github.com/existflow/carnet/internal/api"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change your name or username",
	RunE:  runProfileEdit,
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE:  runProfilePassword,
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar [file]",
	Short: "Upload or remove your avatar",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileAvatar,
}

var profileInvitedCmd = &cobra.Command{
	Use:   "invited",
	Short: "List the members you invited",
	RunE:  runProfileInvited,
}

func init() {
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profilePasswordCmd)
	profileCmd.AddCommand(profileAvatarCmd)
	profileCmd.AddCommand(profileInvitedCmd)

	profileEditCmd.Flags().String("name", "", "New full name")
	profileEditCmd.Flags().String("username", "", "New username")
	profileAvatarCmd.Flags().Bool("rm", false, "Remove the avatar instead of uploading")
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	var req api.UpdateProfileRequest
	if cmd.Flags().Changed("name") {
		v, _ := cmd.Flags().GetString("name")
		req.FullName = &v
	}
	if cmd.Flags().Changed("username") {
		v, _ := cmd.Flags().GetString("username")
		req.Username = &v
	}
	if req.FullName == nil && req.Username == nil {
		return fmt.Errorf("nothing to change; use --name or --username")
	}

	if _, err := app.API.UpdateProfile(cmd.Context(), token, req); err != nil {
		return display(err)
	}

	// Pull the fresh identity into the session
	if err := app.Store.RefreshUser(cmd.Context()); err != nil {
		return display(err)
	}

	fmt.Println("✅ Profile updated.")
	return nil
}

func runProfilePassword(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	current := readPassword("Current password: ")
	next := readPassword("New password: ")
	confirm := readPassword("Confirm new password: ")

	if next != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := app.API.ChangePassword(cmd.Context(), token, current, next); err != nil {
		return display(err)
	}

	fmt.Println("✅ Password changed.")
	return nil
}

func runProfileAvatar(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	if rm, _ := cmd.Flags().GetBool("rm"); rm {
		if err := app.API.DeleteAvatar(cmd.Context(), token); err != nil {
			return display(err)
		}
		if err := app.Store.RefreshUser(cmd.Context()); err != nil {
			return display(err)
		}
		fmt.Println("✅ Avatar removed.")
		return nil
	}

	if len(args) < 1 {
		return fmt.Errorf("usage: carnet profile avatar <file>")
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := app.API.UploadAvatar(cmd.Context(), token, file.Name(), file); err != nil {
		return display(err)
	}
	if err := app.Store.RefreshUser(cmd.Context()); err != nil {
		return display(err)
	}

	fmt.Println("✅ Avatar uploaded.")
	return nil
}

func runProfileInvited(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	users, err := app.API.ListInvited(cmd.Context(), token)
	if err != nil {
		return display(err)
	}

	if len(users) == 0 {
		fmt.Println("You have not invited anyone yet. Run: carnet invite new")
		return nil
	}

	fmt.Printf("\n👥 Invited members (%d)\n", len(users))
	for _, u := range users {
		name := u.Username
		if u.FullName != "" {
			name = fmt.Sprintf("%s (%s)", u.FullName, u.Username)
		}
		fmt.Printf("  • %s (joined %s)\n", name, u.CreatedAt.Format("Jan 2, 2006"))
	}
	fmt.Println()
	return nil
}
