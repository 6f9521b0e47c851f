package cron

import (
	"context"
	"log/slog"
	"time"
)

// RefreshTokenPurger deletes refresh tokens that can no longer be used.
type RefreshTokenPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// RevocationPurger drops expired entries from the in-memory access token denylist.
type RevocationPurger interface {
	PurgeRevoked() int
}

type TokenJobs struct {
	refresh RefreshTokenPurger
	revoked RevocationPurger
}

func NewTokenJobs(refresh RefreshTokenPurger, revoked RevocationPurger) *TokenJobs {
	return &TokenJobs{refresh: refresh, revoked: revoked}
}

func (j *TokenJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_expired_tokens", 1*time.Hour, j.Purge)
}

func (j *TokenJobs) Purge(ctx context.Context) error {
	deleted, err := j.refresh.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	purged := j.revoked.PurgeRevoked()
	if deleted > 0 || purged > 0 {
		slog.Info("Cron: purged tokens", "refresh_tokens", deleted, "revoked_access_tokens", purged)
	}
	return nil
}
