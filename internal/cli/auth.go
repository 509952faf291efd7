package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/existflow/carnet/internal/api"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the recipe server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the recipe server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the recipe server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account (invite required)",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)

	registerCmd.Flags().String("invite", "", "Invite token")
}

func readLine(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	username := readLine("Username: ")
	password := readPassword("Password: ")

	fmt.Println("🔄 Logging in...")
	if err := app.Store.Login(cmd.Context(), username, password); err != nil {
		return display(err)
	}

	fmt.Printf("✅ Logged in as %s!\n", app.Store.Current().User.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	app.Store.Logout()
	fmt.Println("✅ Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	invite, _ := cmd.Flags().GetString("invite")
	if invite == "" {
		invite = readLine("Invite token (empty for first account): ")
	}

	// Check the invite before asking for everything else
	if invite != "" {
		if _, err := app.API.ValidateInvite(cmd.Context(), invite); err != nil {
			return display(err)
		}
	}

	username := readLine("Username: ")
	fullName := readLine("Full name (optional): ")
	password := readPassword("Password: ")
	confirm := readPassword("Confirm Password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	err = app.Store.Register(cmd.Context(), api.RegisterRequest{
		Username:    username,
		Password:    password,
		FullName:    fullName,
		InviteToken: invite,
	})
	if err != nil {
		return display(err)
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	app.Store.Init(cmd.Context())
	current := app.Store.Current()
	if !current.IsAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}

	user := current.User
	fmt.Printf("Username:  %s\n", user.Username)
	if user.FullName != "" {
		fmt.Printf("Name:      %s\n", user.FullName)
	}
	if user.IsAdmin {
		fmt.Println("Role:      admin")
	}
	fmt.Printf("Member since: %s\n", user.CreatedAt.Format("Jan 2, 2006"))
	return nil
}
