package messenger

import (
	"context"

	"github.com/PaulBabatuyi/chater/internal/apperr"
	"github.com/PaulBabatuyi/chater/internal/data"
	"github.com/PaulBabatuyi/chater/internal/normalize"
)

// MaxContentLength bounds a single message in bytes.
const MaxContentLength = 4096

func validateContent(content string) error {
	if normalize.Blank(content) {
		return apperr.Validation("content is required")
	}
	if len(content) > MaxContentLength {
		return apperr.Validation("content is too long")
	}
	return nil
}

// PostPublicMessage appends a message to the public dialog.
func (s *Service) PostPublicMessage(ctx context.Context, authorID, content string) (*data.Message, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	d, err := s.PublicDialog(ctx)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, d, authorID, content)
}

// PostMessage appends a message to the given dialog. Only party members may
// write to a private dialog.
func (s *Service) PostMessage(ctx context.Context, dialogID, authorID, content string) (*data.Message, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	d, err := s.GetDialog(ctx, dialogID)
	if err != nil {
		return nil, err
	}
	if d.IsPrivate() && !d.HasMember(authorID) {
		return nil, apperr.Forbidden("not a member of this dialog")
	}
	return s.post(ctx, d, authorID, content)
}

func (s *Service) post(ctx context.Context, d *data.Dialog, authorID, content string) (*data.Message, error) {
	m := &data.Message{
		ID:      data.NewID(),
		Dialog:  d.ID,
		Author:  authorID,
		Date:    data.Timestamp(s.now()),
		Content: content,
	}

	updated, err := s.store.AppendMessage(ctx, m)
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}

	if updated.IsPrivate() {
		s.bc.EmitToRooms(data.EventPrivateDialogUpdate, updated, updated.Party...)
		s.bc.EmitToRooms(data.EventPrivateMessage, m, updated.Party...)
	} else {
		s.bc.Broadcast(data.EventPublicDialogUpdate, updated)
		s.bc.Broadcast(data.EventPublicMessage, m)
	}
	return m, nil
}
