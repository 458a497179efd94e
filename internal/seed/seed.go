// Package seed fills an empty store with demo accounts and conversations.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PaulBabatuyi/chater/internal/account"
	"github.com/PaulBabatuyi/chater/internal/auth"
	"github.com/PaulBabatuyi/chater/internal/data"
)

// Demo account credentials.
const (
	DemoEmail    = "user@chater.com"
	DemoName     = "User"
	DemoPassword = "password"
)

// Contacts is the number of extra users, each with a private dialog with
// the demo account.
const Contacts = 10

const lorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor " +
	"incididunt ut labore et dolore magna aliqua. Ut enim ad minim veniam, quis nostrud " +
	"exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat."

// Result summarizes what was written.
type Result struct {
	Users    int
	Dialogs  int
	Messages int
}

// Populate writes the demo data unless the store already has a public
// dialog, in which case it does nothing.
func Populate(ctx context.Context, store data.Store, now time.Time, log *slog.Logger) (Result, error) {
	if _, err := store.PublicDialog(ctx); err == nil {
		log.Info("store already populated, skipping seed")
		return Result{}, nil
	} else if !errors.Is(err, data.ErrNotFound) {
		return Result{}, fmt.Errorf("check public dialog: %w", err)
	}

	// one hash for every demo account keeps startup fast
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	demo, err := account.NewUser(DemoEmail, DemoName, hash)
	if err != nil {
		return Result{}, err
	}
	users := []*data.User{demo}

	yesterday := now.Add(-24 * time.Hour)
	public := &data.Dialog{ID: data.NewID(), Type: data.DialogPublic, UpdatedAt: data.Timestamp(now)}
	dialogs := []*data.Dialog{public}
	messages := conversation(public, demo.ID, yesterday)

	for i := 0; i < Contacts; i++ {
		u, err := account.NewUser(fmt.Sprintf("u%d@chater.com", i), fmt.Sprintf("U%d", i), hash)
		if err != nil {
			return Result{}, err
		}
		users = append(users, u)

		d := &data.Dialog{
			ID:        data.NewID(),
			Type:      data.DialogPrivate,
			UpdatedAt: data.Timestamp(now),
			Party:     []string{demo.ID, u.ID},
		}
		dialogs = append(dialogs, d)
		messages = append(messages, conversation(d, u.ID, yesterday)...)
	}

	if err := store.Populate(ctx, users, dialogs, messages); err != nil {
		return Result{}, err
	}

	res := Result{Users: len(users), Dialogs: len(dialogs), Messages: len(messages)}
	log.Info("seeded demo data", "users", res.Users, "dialogs", res.Dialogs, "messages", res.Messages)
	return res, nil
}

// conversation builds 140 messages around base: 60 an hour before it, 20
// at it and 60 an hour after it. The dialog counters are set to match.
func conversation(d *data.Dialog, author string, base time.Time) []*data.Message {
	var out []*data.Message
	add := func(at time.Time, prefix string) {
		out = append(out, &data.Message{
			ID:      data.NewID(),
			Dialog:  d.ID,
			Author:  author,
			Date:    float64(at.Unix()),
			Content: prefix + lorem,
		})
	}

	for i := 0; i < 60; i++ {
		add(base.Add(-time.Hour).Add(-time.Duration(i)*time.Second), "Old ")
	}
	for i := 0; i < 20; i++ {
		add(base.Add(time.Duration(i)*time.Second), "")
	}
	for i := 0; i < 60; i++ {
		add(base.Add(time.Hour).Add(time.Duration(i)*time.Second), "New ")
	}

	d.MessagesCount = len(out)
	var newest float64
	for _, m := range out {
		newest = max(newest, m.Date)
	}
	d.UpdatedAt = newest
	return out
}
