package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/cache"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/event"
)

// Summarizer computes the attendance recap of one day.
type Summarizer interface {
	DailySummary(ctx context.Context, day time.Time) (attendance.DailySummaryResponse, error)
}

// SummaryJob publishes the end-of-day recap once per day. The cache claim
// keeps several API replicas from sending it twice.
type SummaryJob struct {
	summarizer Summarizer
	events     event.Publisher
	cache      *cache.CacheHelper
	hour       int
	loc        *time.Location
	now        func() time.Time
}

func NewSummaryJob(summarizer Summarizer, events event.Publisher, cacheHelper *cache.CacheHelper, hour int, loc *time.Location) *SummaryJob {
	return &SummaryJob{
		summarizer: summarizer,
		events:     events,
		cache:      cacheHelper,
		hour:       hour,
		loc:        loc,
		now:        time.Now,
	}
}

func (j *SummaryJob) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddDailyJob("daily_attendance_summary", j.hour, j.loc, 5*time.Minute, j.now, j.Run)
}

// Run publishes the recap of day unless another instance already did.
func (j *SummaryJob) Run(ctx context.Context, day time.Time) error {
	date := day.Format("2006-01-02")
	key := "summary:sent:" + date

	won, err := j.cache.Claim(ctx, key, 36*time.Hour)
	if err != nil {
		return err
	}
	if !won {
		slog.Info("Cron: daily summary already sent", "date", date)
		return nil
	}

	summary, err := j.summarizer.DailySummary(ctx, day)
	if err != nil {
		j.release(ctx, key)
		return fmt.Errorf("failed to build daily summary: %w", err)
	}

	payload := event.DailySummaryReady{
		Date:    summary.Date,
		Present: summary.Present,
		Late:    summary.Late,
		Leave:   summary.Leave,
		Absent:  make([]event.AbsentUser, 0, len(summary.Absentees)),
	}
	for _, a := range summary.Absentees {
		payload.Absent = append(payload.Absent, event.AbsentUser{Name: a.Name, NIP: a.NIP, Role: a.Role})
	}

	if err := j.events.Publish(ctx, event.TopicDailySummary, payload); err != nil {
		j.release(ctx, key)
		return fmt.Errorf("failed to publish daily summary: %w", err)
	}

	slog.Info("Cron: daily summary published",
		"date", summary.Date,
		"present", summary.Present,
		"late", summary.Late,
		"leave", summary.Leave,
		"absent", summary.Absent,
	)
	return nil
}

// release drops the claim so a later poll, here or on another replica, can retry.
func (j *SummaryJob) release(ctx context.Context, key string) {
	if err := j.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("Cron: failed to release daily summary claim", "key", key, "error", err)
	}
}
