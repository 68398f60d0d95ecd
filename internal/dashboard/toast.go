package dashboard

import (
	"fmt"
	"time"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/models"
	"github.com/starford/ncdash/internal/store"
)

// OpenToast shows msg immediately and hides it after d (the configured
// default when d <= 0). A toast opened later is never hidden by this one's
// timer.
func (s *Service) OpenToast(msg string, typ models.ToastType, d time.Duration) error {
	switch typ {
	case "":
		typ = models.ToastInfo
	case models.ToastError, models.ToastInfo, models.ToastSuccess:
	default:
		return fmt.Errorf("dashboard: toast type %q: %w", typ, apperr.ErrInvalidRequest)
	}
	if d <= 0 {
		d = s.toastDuration
	}

	// The generation, the dispatch and the timer swap change together so the
	// newest toast always owns the live timer.
	s.toastMu.Lock()
	defer s.toastMu.Unlock()
	gen := s.toastGen.Add(1)
	s.dispatch(store.ToastShown{Message: msg, Type: typ, Generation: gen})
	if s.toastTimer != nil {
		s.toastTimer.Stop()
	}
	s.toastTimer = time.AfterFunc(d, func() {
		s.dispatch(store.ToastHidden{Generation: gen})
	})
	return nil
}

// HideToast hides the current toast immediately.
func (s *Service) HideToast() {
	s.dispatch(store.ToastHidden{})
}
