package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fileboxhq/filebox-go/internal/session"
)

// Login command flags.
var (
	flagLoginUsername string
	flagLoginPassword string
)

// Register command flags.
var (
	flagRegUsername string
	flagRegPassword string
	flagRegConfirm  string
	flagRegEmail    string
	flagRegCompany  string
	flagRegRole     string
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and establish a session",
		RunE:  runLogin,
	}

	cmd.Flags().StringVarP(&flagLoginUsername, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&flagLoginPassword, "password", "p", "", "account password (prompted when omitted)")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account (does not log in)",
		RunE:  runRegister,
	}

	cmd.Flags().StringVarP(&flagRegUsername, "username", "u", "", "account username")
	cmd.Flags().StringVar(&flagRegPassword, "password", "", "account password")
	cmd.Flags().StringVar(&flagRegConfirm, "confirm-password", "", "password confirmation")
	cmd.Flags().StringVar(&flagRegEmail, "email", "", "account email")
	cmd.Flags().StringVar(&flagRegCompany, "company", "", "company name")
	cmd.Flags().StringVar(&flagRegRole, "role", "", "account role (USER or ADMIN)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved session",
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated user",
		RunE:  runWhoami,
	}
}

// promptLine asks for a value on stdin when the flag was left empty.
func promptLine(label, current string) (string, error) {
	if current != "" {
		return current, nil
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)

	reader := bufio.NewReader(os.Stdin)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}

	return strings.TrimSpace(line), nil
}

func runLogin(_ *cobra.Command, _ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	username, err := promptLine("Username", flagLoginUsername)
	if err != nil {
		return err
	}

	password, err := promptLine("Password", flagLoginPassword)
	if err != nil {
		return err
	}

	profile, err := env.controller.Login(context.Background(), username, password)
	if err != nil {
		return err
	}

	statusf("Logged in as %s.\n", profile.Username)

	return nil
}

func runRegister(_ *cobra.Command, _ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	err = env.controller.Register(context.Background(), session.Registration{
		Username:        flagRegUsername,
		Password:        flagRegPassword,
		ConfirmPassword: flagRegConfirm,
		Email:           flagRegEmail,
		Company:         flagRegCompany,
		Role:            flagRegRole,
	})
	if err != nil {
		return err
	}

	statusf("Account created. Run 'filebox login' to sign in.\n")

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	if err := env.controller.Logout(); err != nil {
		return err
	}

	statusf("Logged out.\n")

	return nil
}

func runWhoami(_ *cobra.Command, _ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	if !env.controller.IsAuthenticated() {
		return errNotLoggedIn
	}

	profile := env.controller.CurrentUser()
	if profile == nil {
		// Credential present but no cached profile — ask the server.
		profile, err = env.client.Me(context.Background())
		if err != nil {
			return fmt.Errorf("fetching user profile: %w", err)
		}

		if storeErr := env.store.SetProfile(profile); storeErr != nil {
			env.logger.Warn("caching fetched profile failed", "error", storeErr.Error())
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(profile); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	}

	fmt.Printf("User:    %s\n", profile.Username)

	if profile.Email != "" {
		fmt.Printf("Email:   %s\n", profile.Email)
	}

	if profile.Company != "" {
		fmt.Printf("Company: %s\n", profile.Company)
	}

	if profile.Role != "" {
		fmt.Printf("Role:    %s\n", profile.Role)
	}

	return nil
}
