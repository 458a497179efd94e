// Command chater is a terminal client for the chat server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/chater/internal/client"
	"github.com/PaulBabatuyi/chater/internal/data"
)

var (
	flagServer  string
	flagNoColor bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "chater",
	Short:         "Terminal client for the chater server",
	Long:          "Register, browse dialogs, send messages and watch them arrive live.\nSession state is kept in ~/.chater/config.toml.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "server address (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log socket activity to stderr")
}

// app is what every command works with: the loaded config, a REST client
// carrying the saved token and an output printer.
type app struct {
	cfg *Config
	api *client.API
	out *printer
	log *slog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagServer != "" {
		cfg.Server.URL = flagServer
	}

	api := client.NewAPI(cfg.serverURL(), nil)
	api.SetToken(cfg.Auth.Token)

	var logOut io.Writer = io.Discard
	if flagVerbose {
		logOut = cmd.ErrOrStderr()
	}
	return &app{
		cfg: cfg,
		api: api,
		out: newPrinter(cmd.OutOrStdout(), cfg.Server.Colors && !flagNoColor),
		log: slog.New(slog.NewTextHandler(logOut, nil)),
	}, nil
}

var errNotLoggedIn = errors.New("not logged in: run 'chater login' first")

func (a *app) requireLogin() error {
	if a.cfg.Auth.Token == "" {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) self() data.PublicUser {
	return data.PublicUser{ID: a.cfg.Auth.UserID, Email: a.cfg.Auth.Email, Name: a.cfg.Auth.Name}
}

// learnNames resolves the user ids of dialogs to names for display.
func (a *app) learnNames(ctx context.Context, ds []data.Dialog) {
	a.out.remember(a.self())
	var ids []string
	for _, d := range ds {
		ids = append(ids, d.Party...)
	}
	if len(ids) == 0 {
		return
	}
	users, err := a.api.Users(ctx, ids)
	if err != nil {
		a.log.Warn("resolve names", "err", err)
		return
	}
	a.out.remember(users...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
