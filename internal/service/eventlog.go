package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"task_tracker/internal/logger"
	"task_tracker/internal/models"
	"task_tracker/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// ActivityService records task events and serves them back per owner.
type ActivityService struct {
	eventRepo repository.EventRepo
	feed      *FeedHub
	log       *logger.Logger
}

func NewActivityService(eventRepo repository.EventRepo, feed *FeedHub, log *logger.Logger) *ActivityService {
	return &ActivityService{eventRepo: eventRepo, feed: feed, log: log}
}

// Record stores e and pushes it to live subscribers. A failed append is
// logged; the event is still published.
func (s *ActivityService) Record(ctx context.Context, e models.TaskEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := s.eventRepo.Append(ctx, e); err != nil && s.log != nil {
		s.log.Errorw("activity_append_failed", "err", err, "type", e.Type, "task_id", e.TaskID)
	}
	if s.feed != nil {
		s.feed.Publish(e)
	}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}
	return from, to, normalizeEventType(f.Type), nil
}

func (s *ActivityService) ListEvents(ctx context.Context, owner string, f LogFilter) ([]models.TaskEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, owner, from, to, typ)
}

// Subscribe exposes the live feed for owner.
func (s *ActivityService) Subscribe(owner string) (<-chan models.TaskEvent, func()) {
	return s.feed.Subscribe(owner)
}
