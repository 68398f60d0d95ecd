package dashboard

import (
	"context"
	"fmt"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/models"
	"github.com/starford/ncdash/internal/store"
)

// ListSessions replaces the session list with the backend's.
func (s *Service) ListSessions(ctx context.Context) ([]models.Session, error) {
	s.dispatch(store.SessionsPending{})
	list, err := s.api.ListSessions(ctx)
	if err != nil {
		s.dispatch(store.SessionsRejected{Message: apperr.MsgListSessions})
		s.logFailure("list sessions", err)
		return nil, fmt.Errorf("dashboard: list sessions: %w", err)
	}
	s.dispatch(store.SessionsFulfilled{Sessions: list})
	return list, nil
}

// CreateSession creates a session on datasetID and selects it. parentID may
// be empty.
func (s *Service) CreateSession(ctx context.Context, datasetID, parentID string) (*models.Session, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dashboard: create session: dataset required: %w", apperr.ErrInvalidRequest)
	}
	s.dispatch(store.SessionCreatePending{})
	sess, err := s.api.CreateSession(ctx, datasetID, parentID)
	if err != nil {
		s.dispatch(store.SessionCreateRejected{Message: apperr.MsgCreateSession})
		s.logFailure("create session", err)
		return nil, fmt.Errorf("dashboard: create session: %w", err)
	}
	s.dispatch(store.SessionCreated{Session: *sess})
	return sess, nil
}

// SetSession selects a listed session.
func (s *Service) SetSession(id string) error {
	return s.store.Dispatch(store.SetSession{ID: id})
}
