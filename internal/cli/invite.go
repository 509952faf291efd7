package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite family members",
}

var inviteNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an invite token to share",
	RunE:  runInviteNew,
}

var inviteCheckCmd = &cobra.Command{
	Use:   "check <token>",
	Short: "Check whether an invite token is still valid",
	Args:  cobra.ExactArgs(1),
	RunE:  runInviteCheck,
}

func init() {
	inviteCmd.AddCommand(inviteNewCmd)
	inviteCmd.AddCommand(inviteCheckCmd)
}

func runInviteNew(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	token, err := app.requireAuth(cmd)
	if err != nil {
		return err
	}

	invite, err := app.API.CreateInvite(cmd.Context(), token)
	if err != nil {
		return display(err)
	}

	fmt.Println("✅ Invite created! Share this token:")
	fmt.Printf("\n  %s\n\n", invite.Token)
	fmt.Printf("Valid until %s.\n", invite.ExpiresAt.Format("Jan 2, 2006"))
	return nil
}

func runInviteCheck(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	invite, err := app.API.ValidateInvite(cmd.Context(), args[0])
	if err != nil {
		return display(err)
	}

	fmt.Printf("✅ Invite is valid until %s.\n", invite.ExpiresAt.Format("Jan 2, 2006"))
	return nil
}
