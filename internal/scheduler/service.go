// Package scheduler runs periodic background jobs. Its single job today is
// the inactivity sweep: scan every chapter for members with no recent
// activity and alert the chapter leader.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"chapterlink/internal/domain"
	"chapterlink/internal/member"
	"chapterlink/internal/notification"
	"chapterlink/pkg/logger"

	"github.com/google/uuid"
)

// ChapterLister pages through chapters.
type ChapterLister interface {
	List(ctx context.Context, limit, offset int) ([]*domain.Chapter, error)
}

// MemberLister fetches a chapter's members with their last-activity timestamps.
type MemberLister interface {
	FindByChapter(ctx context.Context, chapterID uuid.UUID) ([]*domain.ChapterMember, error)
}

// Notifier sends event notifications to a user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

// Scheduler periodically sweeps chapters for inactive members.
type Scheduler struct {
	chapters  ChapterLister
	members   MemberLister
	notifier  Notifier
	threshold time.Duration
	interval  time.Duration
	logger    logger.Logger
	stop      chan struct{}
}

// New constructs a Scheduler. interval controls how often the sweep runs;
// threshold is the inactivity cutoff applied to each member.
func New(chapters ChapterLister, members MemberLister, notifier Notifier, threshold, interval time.Duration, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		chapters:  chapters,
		members:   members,
		notifier:  notifier,
		threshold: threshold,
		interval:  interval,
		logger:    log,
		stop:      make(chan struct{}),
	}
}

// Start launches the sweep loop in a goroutine.
func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stop:
				ticker.Stop()
				return
			}
		}
	}()
	s.logger.Info("Inactivity scheduler started", map[string]interface{}{
		"interval":  s.interval.String(),
		"threshold": s.threshold.String(),
	})
}

// Stop terminates the sweep loop.
func (s *Scheduler) Stop() {
	close(s.stop)
}

// Sweep runs one pass over all chapters. Exposed so operators can trigger
// it out of band.
func (s *Scheduler) Sweep(ctx context.Context) {
	const pageSize = 100
	now := time.Now()

	for offset := 0; ; offset += pageSize {
		chapters, err := s.chapters.List(ctx, pageSize, offset)
		if err != nil {
			s.logger.Error("Inactivity sweep failed to list chapters", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		if len(chapters) == 0 {
			return
		}

		for _, c := range chapters {
			s.sweepChapter(ctx, c, now)
		}
	}
}

func (s *Scheduler) sweepChapter(ctx context.Context, c *domain.Chapter, now time.Time) {
	members, err := s.members.FindByChapter(ctx, c.ID)
	if err != nil {
		s.logger.Error("Inactivity sweep failed to list members", map[string]interface{}{
			"chapter_id": c.ID.String(),
			"error":      err.Error(),
		})
		return
	}

	inactive := 0
	for _, m := range members {
		if member.IsInactive(m.LastActivity, now, s.threshold) {
			inactive++
		}
	}
	if inactive == 0 {
		return
	}

	err = s.notifier.Notify(ctx, c.LeaderID, notification.EventInactivityAlert, map[string]interface{}{
		"chapter_id":     c.ID.String(),
		"count":          fmt.Sprintf("%d", inactive),
		"threshold_days": int(s.threshold.Hours() / 24),
	})
	if err != nil {
		s.logger.Warn("Inactivity alert delivery failed", map[string]interface{}{
			"chapter_id": c.ID.String(),
			"error":      err.Error(),
		})
	}
}
