package client

import (
	"context"
	"sync"

	"github.com/PaulBabatuyi/chater/internal/data"
)

// MessageSource is the part of the REST client the pager reads from.
type MessageSource interface {
	Dialog(ctx context.Context, id string) (*data.Dialog, error)
	Messages(ctx context.Context, dialogID string, before float64) ([]data.Message, error)
}

// Pager loads message history into State, newest page first and older pages
// on demand.
type Pager struct {
	src   MessageSource
	state *State

	mu       sync.Mutex
	inflight map[string]bool
}

func NewPager(src MessageSource, state *State) *Pager {
	return &Pager{src: src, state: state, inflight: make(map[string]bool)}
}

func (p *Pager) begin(dialogID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflight[dialogID] {
		return false
	}
	p.inflight[dialogID] = true
	return true
}

func (p *Pager) end(dialogID string) {
	p.mu.Lock()
	delete(p.inflight, dialogID)
	p.mu.Unlock()
}

// LoadInitial refreshes the dialog and loads its newest page.
func (p *Pager) LoadInitial(ctx context.Context, dialogID string) error {
	if !p.begin(dialogID) {
		return nil
	}
	defer p.end(dialogID)

	d, err := p.src.Dialog(ctx, dialogID)
	if err != nil {
		return err
	}
	p.state.MergeDialog(*d)

	ms, err := p.src.Messages(ctx, dialogID, 0)
	if err != nil {
		return err
	}
	p.state.MergeMessages(ms)
	return nil
}

// HasMore reports whether the server holds messages that are not loaded.
func (p *Pager) HasMore(dialogID string) bool {
	d, ok := p.state.Dialog(dialogID)
	if !ok {
		return true
	}
	return p.state.Count(dialogID) < d.MessagesCount
}

// LoadOlder loads the page before the oldest loaded message and returns how
// many messages arrived. It does nothing while another load of the same
// dialog is running or once everything is loaded.
func (p *Pager) LoadOlder(ctx context.Context, dialogID string) (int, error) {
	if !p.HasMore(dialogID) {
		return 0, nil
	}
	if !p.begin(dialogID) {
		return 0, nil
	}
	defer p.end(dialogID)

	var before float64
	if oldest, ok := p.state.Oldest(dialogID); ok {
		before = oldest.Date
	}
	ms, err := p.src.Messages(ctx, dialogID, before)
	if err != nil {
		return 0, err
	}
	p.state.MergeMessages(ms)
	return len(ms), nil
}

// OnScroll loads older history when v is near the top. measure must return
// the list height after the new messages are rendered. The returned scroll
// top keeps the previously visible messages in place; moved is false when
// nothing was loaded.
func (p *Pager) OnScroll(ctx context.Context, dialogID string, v Viewport, measure func() float64) (top float64, moved bool, err error) {
	if !v.NearTop() {
		return v.ScrollTop, false, nil
	}
	anchor := v.Anchor()
	n, err := p.LoadOlder(ctx, dialogID)
	if err != nil || n == 0 {
		return v.ScrollTop, false, err
	}
	return anchor.Restore(measure()), true, nil
}
