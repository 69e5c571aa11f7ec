package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"backoffice.app/internal/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an identity token issued by the sign-in service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				return errors.New("--token is required")
			}
			id, err := a.session.Login(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return errors.New("token has already expired")
				}
				return fmt.Errorf("login failed: %w", err)
			}
			pterm.Success.Printf("Logged in as %s (%s)\n", orDash(id.Name), id.Role)
			pterm.Info.Printf("Session expires at %s\n", id.ExpiresAt.Local().Format(time.RFC1123))
			pterm.Info.Printf("Credentials saved to %s\n", a.store.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Identity token (JWT)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return fmt.Errorf("failed to delete credentials: %w", err)
			}
			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity and what it may do",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := a.session.Current()
			if !ok {
				return errors.New("not logged in")
			}
			pterm.DefaultSection.Println("Identity")
			pterm.Info.Printf("Subject: %s\n", orDash(id.Subject))
			pterm.Info.Printf("Name:    %s\n", orDash(id.Name))
			pterm.Info.Printf("Role:    %s\n", orDash(id.RawRole))
			pterm.Info.Printf("Expires: %s\n", id.ExpiresAt.Local().Format(time.RFC1123))
			if id.Role == auth.RoleUnknown {
				pterm.Warning.Println("Role is not recognised by the console: every screen is denied")
			}

			pterm.DefaultSection.Println("Capabilities")
			caps := auth.Capabilities(id, true)
			table := pterm.TableData{{"ACTION", "ALLOWED"}}
			for _, action := range auth.Actions() {
				allowed := "no"
				if caps[action] {
					allowed = "yes"
				}
				table = append(table, []string{string(action), allowed})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
}
