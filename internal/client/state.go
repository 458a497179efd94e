package client

import (
	"cmp"
	"slices"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/PaulBabatuyi/chater/internal/data"
)

// thread is the ordered message list of one dialog with an id index.
type thread struct {
	index map[string]int
	items []data.Message
}

func newThread() *thread {
	return &thread{index: make(map[string]int)}
}

func (t *thread) reindex(from int) {
	for i := from; i < len(t.items); i++ {
		t.index[t.items[i].ID] = i
	}
}

// insertPos is the position after every message dated at or before date.
func (t *thread) insertPos(date float64) int {
	return sort.Search(len(t.items), func(i int) bool { return t.items[i].Date > date })
}

func (t *thread) merge(m data.Message) {
	if i, ok := t.index[m.ID]; ok {
		if t.items[i].Date == m.Date {
			t.items[i] = m
			return
		}
		t.items = slices.Delete(t.items, i, i+1)
		delete(t.index, m.ID)
		t.reindex(i)
	}
	pos := t.insertPos(m.Date)
	t.items = slices.Insert(t.items, pos, m)
	t.reindex(pos)
}

// State is the local mirror of dialogs and their loaded messages. It is safe
// for concurrent use.
type State struct {
	mu       sync.RWMutex
	publicID string
	dialogs  map[string]data.Dialog
	threads  map[string]*thread
}

func NewState() *State {
	return &State{
		dialogs: make(map[string]data.Dialog),
		threads: make(map[string]*thread),
	}
}

// MergeDialog stores d, replacing any previous copy.
func (s *State) MergeDialog(d data.Dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Party = slices.Clone(d.Party)
	s.dialogs[d.ID] = d
	if d.Type == data.DialogPublic {
		s.publicID = d.ID
	}
}

// MergeMessage stores m in date order. A message already present is replaced
// and moved if its date changed; equal dates keep arrival order.
func (s *State) MergeMessage(m data.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[m.Dialog]
	if !ok {
		t = newThread()
		s.threads[m.Dialog] = t
	}
	t.merge(m)
}

// MergeMessages merges a page of messages.
func (s *State) MergeMessages(ms []data.Message) {
	for _, m := range ms {
		s.MergeMessage(m)
	}
}

// Messages returns the loaded messages of a dialog, oldest first.
func (s *State) Messages(dialogID string) []data.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[dialogID]
	if !ok {
		return nil
	}
	return slices.Clone(t.items)
}

// Oldest returns the earliest loaded message of a dialog.
func (s *State) Oldest(dialogID string) (data.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[dialogID]
	if !ok || len(t.items) == 0 {
		return data.Message{}, false
	}
	return t.items[0], true
}

// Count is the number of loaded messages of a dialog.
func (s *State) Count(dialogID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.threads[dialogID]; ok {
		return len(t.items)
	}
	return 0
}

func (s *State) Dialog(id string) (data.Dialog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dialogs[id]
	return d, ok
}

// PublicDialog returns the public dialog once it has been merged.
func (s *State) PublicDialog() (data.Dialog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dialogs[s.publicID]
	return d, ok
}

// Dialogs returns every known dialog, most recently updated first.
func (s *State) Dialogs() []data.Dialog {
	s.mu.RLock()
	out := lo.Values(s.dialogs)
	s.mu.RUnlock()
	sortByActivity(out)
	return out
}

// PrivateDialogs returns the private dialogs userID takes part in, most
// recently updated first.
func (s *State) PrivateDialogs(userID string) []data.Dialog {
	s.mu.RLock()
	out := lo.Filter(lo.Values(s.dialogs), func(d data.Dialog, _ int) bool {
		return d.IsPrivate() && d.HasMember(userID)
	})
	s.mu.RUnlock()
	sortByActivity(out)
	return out
}

func sortByActivity(ds []data.Dialog) {
	slices.SortFunc(ds, func(a, b data.Dialog) int {
		if c := cmp.Compare(b.UpdatedAt, a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Reset drops everything except the public dialog and its messages.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	pub, hasPub := s.dialogs[s.publicID]
	pubThread := s.threads[s.publicID]

	s.dialogs = make(map[string]data.Dialog)
	s.threads = make(map[string]*thread)
	if hasPub {
		s.dialogs[pub.ID] = pub
	}
	if pubThread != nil {
		s.threads[s.publicID] = pubThread
	}
}
