package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/PaulBabatuyi/chater/internal/client"
	"github.com/PaulBabatuyi/chater/internal/data"
)

// consoleRows is how many messages of scrollback count as one screen.
const consoleRows = 20

// console is the interactive side of watch. It keeps a scroll position over
// the dialog lines are sent to, measured in messages: "/more" scrolls to the
// top and pulls older history, and while the view is scrolled back live
// messages of that dialog are held until "/end".
type console struct {
	a        *app
	state    *client.State
	pager    *client.Pager
	search   *client.Searcher
	send     func(ctx context.Context, dialogID, content string) (*data.Message, error)
	dialogID string

	mu   sync.Mutex
	view client.Viewport
	held []data.Message
}

func newConsole(a *app, state *client.State, pager *client.Pager, finder client.UserFinder, dialogID string) *console {
	c := &console{
		a:        a,
		state:    state,
		pager:    pager,
		dialogID: dialogID,
		view:     client.Viewport{ClientHeight: consoleRows},
	}
	c.search = client.NewSearcher(finder, c.searched)
	return c
}

// open shows the newest page of the dialog, scrolled to the bottom.
func (c *console) open(ctx context.Context) error {
	if err := c.pager.LoadInitial(ctx, c.dialogID); err != nil {
		return err
	}
	ms := c.state.Messages(c.dialogID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.a.learnAuthors(ctx, ms)
	c.a.out.messages(ms)
	c.view.ScrollHeight = float64(len(ms))
	c.view.ScrollTop = max(0, c.view.ScrollHeight-c.view.ClientHeight)
	return nil
}

func (c *console) receive(ctx context.Context, m data.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.a.learnAuthors(ctx, []data.Message{m})
	if m.Dialog != c.dialogID {
		c.a.out.message(m)
		return
	}

	wasAtBottom := c.view.AtBottom()
	c.view.ScrollHeight++
	c.view.ScrollTop = c.view.Follow(wasAtBottom, c.view.ScrollHeight)
	if wasAtBottom {
		c.a.out.message(m)
		return
	}
	c.held = append(c.held, m)
	c.a.out.notice("%d new, /end to show", len(c.held))
}

// more scrolls to the top and prints the page that loads above it.
func (c *console) more(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	oldest, had := c.state.Oldest(c.dialogID)
	v := c.view
	v.ScrollTop = 0
	top, moved, err := c.pager.OnScroll(ctx, c.dialogID, v, func() float64 {
		return float64(c.state.Count(c.dialogID))
	})
	if err != nil {
		c.a.out.notice("loading history failed: %v", err)
		return
	}
	if !moved {
		c.a.out.notice("No older messages")
		return
	}

	var older []data.Message
	for _, m := range c.state.Messages(c.dialogID) {
		if !had || m.Date < oldest.Date {
			older = append(older, m)
		}
	}
	c.a.learnAuthors(ctx, older)
	c.a.out.notice("%d older:", len(older))
	c.a.out.messages(older)
	c.view.ScrollHeight = float64(c.state.Count(c.dialogID))
	c.view.ScrollTop = top
}

// end jumps back to the bottom and prints what arrived meanwhile.
func (c *console) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.ScrollTop = max(0, c.view.ScrollHeight-c.view.ClientHeight)
	c.a.out.messages(c.held)
	c.held = nil
}

func (c *console) searched(res client.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if res.Err != nil {
		c.a.out.notice("search %q failed: %v", res.Query, res.Err)
		return
	}
	c.a.out.remember(res.Users...)
	c.a.out.notice("Users matching %q:", res.Query)
	c.a.out.users(res.Users)
}

func (c *console) noticef(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.a.out.notice(format, args...)
}

// handle runs one line of input. Lines that are not commands are posted to
// the dialog.
func (c *console) handle(ctx context.Context, line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/more":
		c.more(ctx)
	case "/end":
		c.end()
	case "/search":
		c.search.Input(ctx, arg)
	default:
		if c.send == nil {
			c.noticef("log in to send messages")
			return
		}
		if _, err := c.send(ctx, c.dialogID, line); err != nil {
			c.noticef("send failed: %v", err)
		}
	}
}

// read handles every non-blank line of r until it ends.
func (c *console) read(ctx context.Context, r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			c.handle(ctx, line)
		}
	}
}

func (c *console) close() { c.search.Stop() }
