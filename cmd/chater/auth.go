package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/chater/internal/client"
	"github.com/PaulBabatuyi/chater/internal/data"
)

func init() {
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("name", "", "display name")
	registerCmd.Flags().String("password", "", "account password")
	for _, f := range []string{"email", "name", "password"} {
		_ = registerCmd.MarkFlagRequired(f)
	}

	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		id, err := a.api.Register(cmd.Context(), email, name, password)
		if err != nil {
			return err
		}
		return a.saveIdentity(id)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		id, err := a.api.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		return a.saveIdentity(id)
	},
}

func (a *app) saveIdentity(id *client.Identity) error {
	a.cfg.Auth = ConfigAuth{
		Token:      id.Hash,
		UserID:     id.ID,
		Email:      id.Email,
		Name:       id.Name,
		LoggedInAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := saveConfig(a.cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	a.out.notice("Logged in as %s <%s> (id %s)", id.Name, id.Email, id.ID)
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		if err := a.api.Logout(cmd.Context()); err != nil {
			a.log.Warn("server logout failed", "err", err)
		}
		a.cfg.Auth = ConfigAuth{}
		if err := saveConfig(a.cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		a.out.notice("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		a.out.users([]data.PublicUser{a.self()})
		return nil
	},
}
