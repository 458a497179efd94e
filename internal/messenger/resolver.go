package messenger

import (
	"context"

	"github.com/PaulBabatuyi/chater/internal/apperr"
	"github.com/PaulBabatuyi/chater/internal/data"
)

const dialogNotFound = "Dialog Not Found"

// Bootstrap makes sure the public dialog exists.
func (s *Service) Bootstrap(ctx context.Context) (*data.Dialog, error) {
	d, err := s.store.EnsurePublicDialog(ctx, &data.Dialog{
		ID:        data.NewID(),
		Type:      data.DialogPublic,
		UpdatedAt: data.Timestamp(s.now()),
	})
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}
	return d, nil
}

// PublicDialog returns the public dialog.
func (s *Service) PublicDialog(ctx context.Context) (*data.Dialog, error) {
	d, err := s.store.PublicDialog(ctx)
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}
	return d, nil
}

// GetDialog returns any dialog by id.
func (s *Service) GetDialog(ctx context.Context, id string) (*data.Dialog, error) {
	if id == "" {
		return nil, apperr.Validation("id is required")
	}
	d, err := s.store.GetDialog(ctx, id)
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}
	return d, nil
}

func checkParty(requesterID, partyID string) error {
	if partyID == "" {
		return apperr.Validation("id is required")
	}
	if partyID == requesterID {
		return apperr.Validation("cannot open a dialog with yourself")
	}
	return nil
}

// FindPrivateDialog returns the existing private dialog between the two
// users without creating one.
func (s *Service) FindPrivateDialog(ctx context.Context, requesterID, partyID string) (*data.Dialog, error) {
	if err := checkParty(requesterID, partyID); err != nil {
		return nil, err
	}
	d, err := s.store.FindPrivateDialog(ctx, requesterID, partyID)
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}
	return d, nil
}

// GetOrCreatePrivateDialog returns the private dialog between requester and
// party, creating it on first use. Both parties are notified on creation.
func (s *Service) GetOrCreatePrivateDialog(ctx context.Context, requesterID, partyID string) (*data.Dialog, error) {
	if err := checkParty(requesterID, partyID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, partyID); err != nil {
		return nil, storeErr(err, "User Not Found")
	}

	d, created, err := s.store.FindOrCreatePrivateDialog(ctx, &data.Dialog{
		ID:        data.NewID(),
		Type:      data.DialogPrivate,
		UpdatedAt: data.Timestamp(s.now()),
		Party:     []string{requesterID, partyID},
	})
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}

	if created {
		s.log.Info("private dialog created", "dialog", d.ID, "party", d.Party)
		s.bc.EmitToRooms(data.EventPrivateDialogUpdate, d, d.Party...)
	}
	return d, nil
}

// ListPrivateDialogs returns the private dialogs userID takes part in.
func (s *Service) ListPrivateDialogs(ctx context.Context, userID string) ([]*data.Dialog, error) {
	ds, err := s.store.ListPrivateDialogs(ctx, userID)
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}
	return ds, nil
}

// ListMessages returns one history page of a dialog: up to data.PageSize
// messages strictly older than before, oldest first. A zero before returns
// the newest page.
func (s *Service) ListMessages(ctx context.Context, dialogID string, before float64) ([]*data.Message, error) {
	if _, err := s.GetDialog(ctx, dialogID); err != nil {
		return nil, err
	}
	ms, err := s.store.ListMessages(ctx, dialogID, before, data.PageSize)
	if err != nil {
		return nil, storeErr(err, dialogNotFound)
	}
	return ms, nil
}
