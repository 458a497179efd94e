package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/chater/internal/client"
	"github.com/PaulBabatuyi/chater/internal/data"
)

const publicAlias = "public"

func init() {
	messagesCmd.Flags().Float64("before", 0, "only messages older than this unix timestamp")
	messagesCmd.Flags().Int("pages", 1, "number of pages to load, newest first")
	watchCmd.Flags().String("dialog", publicAlias, "dialog that lines typed on stdin are sent to")

	rootCmd.AddCommand(dialogsCmd, openCmd, messagesCmd, sendCmd, searchCmd, watchCmd)
}

// resolveDialog maps the "public" alias to the public dialog id.
func (a *app) resolveDialog(ctx context.Context, arg string) (string, error) {
	if arg != publicAlias {
		return arg, nil
	}
	d, err := a.api.PublicDialog(ctx)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

var dialogsCmd = &cobra.Command{
	Use:   "dialogs",
	Short: "List the public dialog and your private dialogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		state := client.NewState()

		pub, err := a.api.PublicDialog(ctx)
		if err != nil {
			return err
		}
		state.MergeDialog(*pub)
		if a.cfg.Auth.Token != "" {
			ds, err := a.api.PrivateDialogs(ctx)
			if err != nil {
				return err
			}
			for _, d := range ds {
				state.MergeDialog(d)
			}
		}

		list := state.Dialogs()
		a.learnNames(ctx, list)
		a.out.dialogs(list, a.cfg.Auth.UserID)
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <user-id>",
	Short: "Find or start a private dialog with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		d, err := a.api.OpenPrivateDialog(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a.learnNames(cmd.Context(), []data.Dialog{*d})
		a.out.dialogs([]data.Dialog{*d}, a.cfg.Auth.UserID)
		return nil
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages <dialog-id|public>",
	Short: "Print dialog history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		id, err := a.resolveDialog(ctx, args[0])
		if err != nil {
			return err
		}
		before, _ := cmd.Flags().GetFloat64("before")
		pages, _ := cmd.Flags().GetInt("pages")

		state := client.NewState()
		if before > 0 {
			d, err := a.api.Dialog(ctx, id)
			if err != nil {
				return err
			}
			state.MergeDialog(*d)
			ms, err := a.api.Messages(ctx, id, before)
			if err != nil {
				return err
			}
			state.MergeMessages(ms)
		} else {
			pager := client.NewPager(a.api, state)
			if err := pager.LoadInitial(ctx, id); err != nil {
				return err
			}
			for i := 1; i < pages && pager.HasMore(id); i++ {
				if _, err := pager.LoadOlder(ctx, id); err != nil {
					return err
				}
			}
		}

		d, _ := state.Dialog(id)
		a.learnNames(ctx, []data.Dialog{d})
		ms := state.Messages(id)
		a.learnAuthors(ctx, ms)
		a.out.messages(ms)
		if oldest, ok := state.Oldest(id); ok && state.Count(id) < d.MessagesCount {
			a.out.notice("%d of %d shown; older: --before %v", state.Count(id), d.MessagesCount, oldest.Date)
		}
		return nil
	},
}

// learnAuthors resolves message authors the printer does not know yet.
func (a *app) learnAuthors(ctx context.Context, ms []data.Message) {
	var ids []string
	for _, m := range ms {
		if _, ok := a.out.names[m.Author]; !ok {
			ids = append(ids, m.Author)
		}
	}
	if len(ids) == 0 {
		return
	}
	users, err := a.api.Users(ctx, ids)
	if err != nil {
		a.log.Warn("resolve authors", "err", err)
		return
	}
	a.out.remember(users...)
}

var sendCmd = &cobra.Command{
	Use:   "send <dialog-id|public> <text>...",
	Short: "Post a message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		m, err := a.send(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		a.out.remember(a.self())
		a.out.message(*m)
		return nil
	},
}

func (a *app) send(ctx context.Context, target, content string) (*data.Message, error) {
	if target == publicAlias {
		return a.api.PostPublicMessage(ctx, content)
	}
	return a.api.PostPrivateMessage(ctx, target, content)
}

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Find users whose name contains the text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		users, err := a.api.SearchUsers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a.out.users(users)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream messages live; lines typed on stdin are sent",
	Long: `Stream messages live. Lines typed on stdin are sent to --dialog, except:
  /more          load older messages of the dialog
  /end           show messages held back while reading history
  /search <name> find users as you type`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		sock, err := client.DialSocket(ctx, a.api.BaseURL(), a.log)
		if err != nil {
			return err
		}
		defer sock.Close()

		sess := client.NewSession(a.api, sock, a.log)
		if err := sess.Start(ctx); err != nil {
			return err
		}
		a.learnNames(ctx, sess.State().Dialogs())

		target, _ := cmd.Flags().GetString("dialog")
		id, err := a.resolveDialog(ctx, target)
		if err != nil {
			return err
		}
		con := newConsole(a, sess.State(), sess.Pager(), a.api, id)
		defer con.close()
		if a.cfg.Auth.Token != "" {
			con.send = sess.Send
		}
		if err := con.open(ctx); err != nil {
			return err
		}

		show := func(_ string, raw json.RawMessage) {
			var m data.Message
			if json.Unmarshal(raw, &m) == nil {
				con.receive(ctx, m)
			}
		}
		sock.On(data.EventPublicMessage, show)
		sock.On(data.EventPrivateMessage, show)

		go con.read(ctx, cmd.InOrStdin())
		con.noticef("Watching %s (Ctrl-C to stop)", a.cfg.serverURL())

		select {
		case <-ctx.Done():
			return nil
		case <-sock.Done():
			return fmt.Errorf("connection lost: %w", sock.Err())
		}
	},
}
