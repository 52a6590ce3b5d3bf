// Package clock is the single timer surface for the rest of the process:
// keyed one-shot jobs at absolute times and keyed periodic jobs, all
// cancellable, all torn down together at shutdown.
package clock

import (
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

var (
	// ErrPastTime will be returned when a one-shot job is requested for a
	// time that has already passed
	ErrPastTime = errors.New("scheduled time is in the past")
	// ErrDuplicateKey will be returned when the key is already scheduled
	ErrDuplicateKey = errors.New("key is already scheduled")
)

type Service struct {
	logger *zap.Logger
	sched  *gocron.Scheduler
}

func NewService(logger *zap.Logger) *Service {
	sched := gocron.NewScheduler(time.UTC)
	sched.TagsUnique()
	sched.StartAsync()

	return &Service{
		logger: logger,
		sched:  sched,
	}
}

// Once runs fn exactly once at the given absolute time. A time already in the
// past is refused rather than fired immediately; callers decide what an
// elapsed deadline means for them.
func (s *Service) Once(key string, at time.Time, fn func()) error {
	if !at.After(time.Now()) {
		return ErrPastTime
	}

	_, err := s.sched.Every(24 * time.Hour).StartAt(at).LimitRunsTo(1).Tag(key).Do(func() {
		fn()

		// the job has run its single time; drop it so the key can be reused
		go s.Cancel(key)
	})
	if err != nil {
		if err.Error() == gocron.ErrTagsUnique(key).Error() {
			return ErrDuplicateKey
		}
		return err
	}

	s.logger.Debug("scheduled one-shot job", zap.String("key", key), zap.Time("at", at))

	return nil
}

// Every runs fn on a fixed period. A running tick is never overlapped by the
// next.
func (s *Service) Every(key string, period time.Duration, fn func()) error {
	_, err := s.sched.Every(period).SingletonMode().Tag(key).Do(fn)
	if err != nil {
		if err.Error() == gocron.ErrTagsUnique(key).Error() {
			return ErrDuplicateKey
		}
		return err
	}

	s.logger.Debug("scheduled periodic job", zap.String("key", key), zap.Duration("period", period))

	return nil
}

// Cancel drops the job with the given key, if it exists.
func (s *Service) Cancel(key string) {
	_ = s.sched.RemoveByTag(key)
}

// Stop cancels every outstanding job and waits for running ones to finish.
// Used at process shutdown so no callback fires into torn-down collaborators.
func (s *Service) Stop() {
	s.sched.Stop()
	s.sched.Clear()
}
