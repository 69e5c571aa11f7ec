package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"backoffice.app/internal/apiclient"
	"backoffice.app/internal/auth"
	"backoffice.app/internal/backend"
	"backoffice.app/internal/config"
	"backoffice.app/internal/guard"
)

const version = "0.1.0"

var readers = auth.NewRoleSet(auth.RoleAdmin, auth.RoleSuperAdmin, auth.RoleAuditor)

// app is the state shared by every subcommand.
type app struct {
	apiURL    string
	configDir string
	timeout   time.Duration

	session *auth.Session
	store   *auth.FileStore
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Back-office operator CLI",
		Long:          `dashctl signs an operator in and drives clients, credit requests, tickets and audit logs through the back-office API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", os.Getenv(config.EnvAPIURL), "Backend API base URL (also "+config.EnvAPIURL+")")
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "Directory holding credentials.json (default: user config dir)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Per-command request timeout")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newClientsCmd(a),
		newCreditsCmd(a),
		newTicketsCmd(a),
		newAuditCmd(a),
		newDocumentsCmd(a),
	)
	return root
}

func (a *app) open() error {
	var (
		store *auth.FileStore
		err   error
	)
	if a.configDir != "" {
		store, err = auth.NewFileStore(a.configDir)
	} else {
		store, err = auth.DefaultFileStore()
	}
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	a.store = store
	a.session = auth.NewSession(store)
	if a.session.Expired() {
		_ = a.session.Logout()
		pterm.Warning.Println("Stored session has expired and was removed")
	}
	return nil
}

// require runs the route guard for a screen before any network call.
func (a *app) require(required auth.RoleSet) error {
	var target string
	g := guard.New(
		guard.NavigatorFunc(func(path string) { target = path }),
		guard.NotifierFunc(func(msg string) { pterm.Warning.Println(msg) }),
	)
	if g.Update(guard.InputFor(a.session, required)).Allowed {
		return nil
	}
	if target == guard.LoginPath {
		return errors.New("not logged in: run `dashctl login --token <token>`")
	}
	return fmt.Errorf("access denied (%s)", target)
}

// authorize checks a mutating action on top of the screen guard.
func (a *app) authorize(action auth.Action) error {
	ctx := context.Background()
	if id, ok := a.session.Current(); ok {
		ctx = auth.ContextWithIdentity(ctx, id)
	}
	if _, err := auth.Authorize(ctx, action); err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return fmt.Errorf("%s (%s)", guard.UnauthorizedMessage, action)
		}
		return err
	}
	return nil
}

func (a *app) services() (*backend.Services, error) {
	if err := config.ValidateAPIURL(a.apiURL); err != nil {
		return nil, err
	}
	api, err := apiclient.New(a.apiURL, a.session, apiclient.WithUserAgent("dashctl/"+version))
	if err != nil {
		return nil, err
	}
	return backend.New(api), nil
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := a.session.Current(); ok {
		ctx = auth.ContextWithIdentity(ctx, id)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
