package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Gmail sign-in",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Gmail in the browser",
	Long: `Open the Google consent page and save the resulting token.

Requires OAuth desktop credentials at gmail.credentials_path
(see 'inboxdomains config show').`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the Gmail token and cached results",
	RunE:  runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.provider.Login(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	userEmail, err := a.provider.UserEmail(ctx)
	if err != nil {
		fmt.Println("Authentication successful!")
		return nil
	}
	fmt.Printf("Authenticated as: %s\n", userEmail)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.provider.Logout(); err != nil {
		return err
	}
	if err := a.store.Clear(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("Signed out and cleared cached results.")
	return nil
}
