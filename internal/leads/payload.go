// Package leads hands a finished session's scorecard to an external
// follow-up system.
package leads

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/game"
)

// ErrConsentRequired is returned when a payload is built without the
// learner agreeing to share their results.
var ErrConsentRequired = errors.New("learner consent is required to share results")

// Learner identifies the person who played.
type Learner struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Consent bool   `json:"consent"`
}

// Validate checks the learner details are usable for follow-up.
func (l Learner) Validate() error {
	if !l.Consent {
		return ErrConsentRequired
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("learner name is required")
	}
	if _, err := mail.ParseAddress(l.Email); err != nil {
		return fmt.Errorf("invalid learner email %q: %w", l.Email, err)
	}
	return nil
}

// Payload is the message published for one completed session.
type Payload struct {
	ID          uuid.UUID          `json:"id"`
	Learner     Learner            `json:"learner"`
	SessionID   string             `json:"session_id"`
	ModelID     string             `json:"model_id"`
	Profile     analytics.Profile  `json:"profile"`
	Counters    analytics.Counters `json:"counters"`
	CompletedAt time.Time          `json:"completed_at"`
}

// NewPayload builds the lead for a completed session.
func NewPayload(l Learner, s *game.Session) (Payload, error) {
	if err := l.Validate(); err != nil {
		return Payload{}, err
	}
	profile, err := s.Profile()
	if err != nil {
		return Payload{}, fmt.Errorf("build lead payload: %w", err)
	}
	st := s.State()
	return Payload{
		ID:          uuid.New(),
		Learner:     l,
		SessionID:   st.SessionID,
		ModelID:     st.ModelID,
		Profile:     profile,
		Counters:    profile.Counters,
		CompletedAt: st.CompletedAt,
	}, nil
}
