package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"shaggydog/internal/auth"
	"shaggydog/internal/store"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	usersCmd.AddCommand(newUsersAddCommand(ctx))
	return usersCmd
}

func newUsersAddCommand(ctx *commandContext) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account directly in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			username := strings.TrimSpace(args[0])
			if len(username) < 3 {
				return fmt.Errorf("username must be at least 3 characters")
			}

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				raw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = string(raw)
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			st, err := store.Open(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			user, err := st.CreateUser(cmd.Context(), username, hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password for the new account (prompted when omitted)")
	return cmd
}
