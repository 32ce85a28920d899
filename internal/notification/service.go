// Package notification delivers event emails to members: join confirmations,
// trade payment receipts, and inactivity alerts to chapter leaders.
package notification

import (
	"context"
	"fmt"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/pkg/logger"

	"github.com/google/uuid"
)

// Event types recognised by the service.
const (
	EventMemberJoined    = "MEMBER_JOINED"
	EventTradePaid       = "TRADE_PAID"
	EventInactivityAlert = "INACTIVITY_ALERT"
)

// dedupeTTL bounds how often the same event reaches the same user.
const dedupeTTL = 24 * time.Hour

// Mailer sends a single email.
type Mailer interface {
	Send(to, subject, body string) error
}

// Deduper suppresses repeat deliveries of the same event within a window.
type Deduper interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

// UserFinder resolves a user ID to its account for addressing.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Service routes domain events to email templates.
type Service struct {
	users  UserFinder
	mailer Mailer
	dedupe Deduper
	logger logger.Logger
}

// NewService constructs a notification Service. dedupe may be nil, in
// which case every event is delivered.
func NewService(users UserFinder, mailer Mailer, dedupe Deduper, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		users:  users,
		mailer: mailer,
		dedupe: dedupe,
		logger: log,
	}
}

// Notify renders and sends the template for eventType to the user.
// Delivery failures are logged rather than propagated beyond the return:
// callers treat notification errors as non-fatal.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error {
	if s.mailer == nil {
		return nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("notification recipient lookup failed", map[string]interface{}{
			"user_id": userID.String(),
			"event":   eventType,
			"error":   err.Error(),
		})
		return err
	}

	if s.dedupe != nil && eventType == EventInactivityAlert {
		// Inactivity alerts repeat on every scheduler run; rate limit them.
		key := fmt.Sprintf("notify:%s:%s", eventType, userID.String())
		ok, err := s.dedupe.SetNX(ctx, key, "1", dedupeTTL)
		if err != nil {
			s.logger.Warn("notification dedupe check failed", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
		} else if !ok {
			s.logger.Debug("notification suppressed by dedupe", map[string]interface{}{
				"event":   eventType,
				"user_id": userID.String(),
			})
			return nil
		}
	}

	subject, body := render(eventType, user.FullName, data)
	if subject == "" {
		s.logger.Warn("unknown notification event", map[string]interface{}{"event": eventType})
		return nil
	}

	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		s.logger.Error("failed to send notification", map[string]interface{}{
			"event":   eventType,
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return err
	}

	s.logger.Info("notification sent", map[string]interface{}{
		"event":   eventType,
		"user_id": userID.String(),
	})
	return nil
}

func render(eventType, name string, data map[string]interface{}) (subject, body string) {
	switch eventType {
	case EventMemberJoined:
		subject = "Welcome to your chapter"
		body = fmt.Sprintf(
			"Hi %s,\n\nYou have joined chapter %v. Submit your monthly metrics to start building your participation score.\n",
			name, data["chapter_id"],
		)
	case EventTradePaid:
		subject = "Trade payment confirmed"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour trade of KES %v has been marked as paid. M-Pesa reference: %v.\n",
			name, data["amount"], data["mpesa_reference"],
		)
	case EventInactivityAlert:
		subject = "Inactive members in your chapter"
		body = fmt.Sprintf(
			"Hi %s,\n\n%v members of your chapter have had no recorded activity for over %v days. Consider reaching out.\n",
			name, data["count"], data["threshold_days"],
		)
	}
	return subject, body
}
