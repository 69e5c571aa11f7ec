package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"backoffice.app/internal/auth"
	"backoffice.app/internal/backend"
)

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "clients", Short: "Browse client accounts"}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(readers); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			clients, err := svc.Clients.List(ctx, query)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}
			table := pterm.TableData{{"ID", "NAME", "EMAIL", "STATUS", "SUSPENDED", "CREATED"}}
			for _, c := range clients {
				table = append(table, []string{c.ID, c.Name, orDash(c.Email), orDash(c.Status), strconv.FormatBool(c.Suspended), formatTime(c.CreatedAt)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	list.Flags().StringVar(&query, "query", "", "Free-text filter")
	cmd.AddCommand(list)
	return cmd
}

func newCreditsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "credits", Short: "Review credit requests"}

	var status, clientID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List credit requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(readers); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			credits, err := svc.Credits.List(ctx, backend.CreditFilter{Status: status, ClientID: clientID})
			if err != nil {
				return fmt.Errorf("failed to list credit requests: %w", err)
			}
			table := pterm.TableData{{"ID", "CLIENT", "AMOUNT", "STATUS", "CREATED"}}
			for _, c := range credits {
				amount := strings.TrimSpace(strconv.FormatFloat(c.Amount, 'f', 2, 64) + " " + c.Currency)
				table = append(table, []string{c.ID, c.ClientID, amount, c.Status, formatTime(c.CreatedAt)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	list.Flags().StringVar(&status, "status", "", "PENDING, APPROVED or REJECTED")
	list.Flags().StringVar(&clientID, "client", "", "Only requests of this client")

	cmd.AddCommand(list,
		newDecisionCmd(a, "approve", auth.ActionApprove),
		newDecisionCmd(a, "reject", auth.ActionReject),
	)
	return cmd
}

func newDecisionCmd(a *app, verb string, action auth.Action) *cobra.Command {
	var reason, key string
	cmd := &cobra.Command{
		Use:   verb + " <credit-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a credit request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(readers); err != nil {
				return err
			}
			if err := a.authorize(action); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			if key == "" {
				key = uuid.NewString()
			}
			d := backend.Decision{Reason: reason, IdempotencyKey: key}

			ctx, cancel := a.context(cmd)
			defer cancel()
			var credit backend.CreditRequest
			if verb == "approve" {
				credit, err = svc.Credits.Approve(ctx, args[0], d)
			} else {
				credit, err = svc.Credits.Reject(ctx, args[0], d)
			}
			if err != nil {
				return fmt.Errorf("failed to %s credit request: %w", verb, err)
			}
			pterm.Success.Printf("Credit request %s is now %s\n", credit.ID, orDash(credit.Status))
			pterm.Info.Printf("Idempotency key: %s\n", key)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Reuse a key when retrying (default: new UUID)")
	if verb == "reject" {
		cmd.Flags().StringVar(&reason, "reason", "", "Why the request is rejected (required)")
	}
	return cmd
}

func newTicketsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "tickets", Short: "Work on support tickets"}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(readers); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			tickets, err := svc.Tickets.List(ctx, status)
			if err != nil {
				return fmt.Errorf("failed to list tickets: %w", err)
			}
			table := pterm.TableData{{"ID", "SUBJECT", "STATUS", "PRIORITY", "CREATED"}}
			for _, t := range tickets {
				table = append(table, []string{t.ID, t.Subject, t.Status, orDash(t.Priority), formatTime(t.CreatedAt)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	list.Flags().StringVar(&status, "status", "", "Only tickets in this status")

	var in backend.TicketInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(readers); err != nil {
				return err
			}
			if err := a.authorize(auth.ActionCreateTicket); err != nil {
				return err
			}
			if strings.TrimSpace(in.Subject) == "" {
				return fmt.Errorf("--subject is required")
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			t, err := svc.Tickets.Create(ctx, in)
			if err != nil {
				return fmt.Errorf("failed to create ticket: %w", err)
			}
			pterm.Success.Printf("Created ticket %s\n", t.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Subject, "subject", "", "Ticket subject")
	create.Flags().StringVar(&in.Description, "description", "", "Ticket description")
	create.Flags().StringVar(&in.Priority, "priority", "", "Ticket priority")
	create.Flags().StringVar(&in.ClientID, "client", "", "Related client id")

	cmd.AddCommand(list, create)
	return cmd
}

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Read the audit trail"}

	var (
		actor, action string
		since         time.Duration
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(readers); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			f := backend.AuditFilter{Actor: actor, Action: action}
			if since > 0 {
				f.From = time.Now().Add(-since)
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			logs, err := svc.AuditLogs.List(ctx, f)
			if err != nil {
				return fmt.Errorf("failed to list audit logs: %w", err)
			}
			table := pterm.TableData{{"WHEN", "ACTOR", "ACTION", "RESOURCE"}}
			for _, l := range logs {
				resource := orDash(strings.Trim(l.Resource+"/"+l.ResourceID, "/"))
				table = append(table, []string{formatTime(l.OccurredAt), l.Actor, l.Action, resource})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	list.Flags().StringVar(&actor, "actor", "", "Only entries by this actor")
	list.Flags().StringVar(&action, "action", "", "Only entries for this action")
	list.Flags().DurationVar(&since, "since", 0, "Only entries newer than this (e.g. 24h)")
	cmd.AddCommand(list)
	return cmd
}

func newDocumentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "documents", Short: "Manage client documents"}

	var docType string
	upload := &cobra.Command{
		Use:   "upload <client-id> <file>",
		Short: "Attach a file to a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(readers); err != nil {
				return err
			}
			if err := a.authorize(auth.ActionEdit); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer f.Close()

			ctx, cancel := a.context(cmd)
			defer cancel()
			doc, err := svc.Documents.Upload(ctx, args[0], backend.Upload{
				Name:   filepath.Base(args[1]),
				Type:   docType,
				Reader: f,
			})
			if err != nil {
				return fmt.Errorf("failed to upload document: %w", err)
			}
			pterm.Success.Printf("Uploaded %s as document %s\n", doc.Name, doc.ID)
			return nil
		},
	}
	upload.Flags().StringVar(&docType, "type", "", "Document type (e.g. ID_CARD)")
	cmd.AddCommand(upload)
	return cmd
}
