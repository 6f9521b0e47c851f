package notification

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/email"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/event"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/sse"
)

const (
	EventAttendance   = "attendance"
	EventDailySummary = "daily_summary"
)

// HeadDirectory resolves the head of school accounts.
type HeadDirectory interface {
	HeadIDs(ctx context.Context) ([]string, error)
}

// HeadLookup loads full user rows by role. Used for mail addresses.
type HeadLookup interface {
	ListByRoles(ctx context.Context, roles []user.Role) ([]user.User, error)
}

// Router is the part of the event bus the notifier subscribes through.
type Router interface {
	Handle(name, topic string, fn event.HandlerFunc)
}

// Notifier turns domain events into live SSE pushes and mails to the heads.
type Notifier struct {
	hub    *sse.Hub
	heads  HeadDirectory
	lookup HeadLookup
	mailer email.EmailService
}

func NewNotifier(hub *sse.Hub, heads HeadDirectory, lookup HeadLookup, mailer email.EmailService) *Notifier {
	return &Notifier{
		hub:    hub,
		heads:  heads,
		lookup: lookup,
		mailer: mailer,
	}
}

// Register subscribes every handler on r. Must be called before the bus runs.
func (n *Notifier) Register(r Router) {
	r.Handle("sse_attendance", event.TopicAttendanceRecorded, n.PushAttendance)
	r.Handle("mail_leave", event.TopicAttendanceRecorded, n.MailLeave)
	r.Handle("sse_daily_summary", event.TopicDailySummary, n.PushSummary)
	r.Handle("mail_daily_summary", event.TopicDailySummary, n.MailSummary)
}

// PushAttendance streams a recorded attendance to the actor and every head.
func (n *Notifier) PushAttendance(ctx context.Context, msg *message.Message) error {
	rec, err := event.Decode[event.AttendanceRecorded](msg)
	if err != nil {
		slog.Error("Dropping malformed attendance event", "error", err)
		return nil
	}

	heads, err := n.heads.HeadIDs(ctx)
	if err != nil {
		return err
	}

	recipients := append([]string{rec.UserID}, heads...)
	delivered := n.hub.PublishToMany(recipients, sse.Event{Event: EventAttendance, Data: rec})
	slog.Debug("Attendance event pushed", "record_id", rec.RecordID, "delivered", delivered)
	return nil
}

// MailLeave tells the heads about a leave or furlough request.
func (n *Notifier) MailLeave(ctx context.Context, msg *message.Message) error {
	rec, err := event.Decode[event.AttendanceRecorded](msg)
	if err != nil {
		slog.Error("Dropping malformed attendance event", "error", err)
		return nil
	}
	if !attendance.Kind(rec.Kind).IsLeave() {
		return nil
	}

	to, err := n.headEmails(ctx)
	if err != nil {
		return err
	}

	notice := email.LeaveNotice{
		Name:        rec.UserName,
		NIP:         rec.NIP,
		Kind:        leaveLabel(rec.Kind),
		Date:        rec.WorkDate,
		Description: rec.Reason,
		DocumentURL: rec.DocumentURL,
	}
	// the mailer retries on its own
	if err := n.mailer.SendLeaveNotice(to, notice); err != nil {
		slog.Error("Failed to send leave notice", "record_id", rec.RecordID, "error", err)
	}
	return nil
}

// PushSummary streams the end-of-day recap to the heads.
func (n *Notifier) PushSummary(ctx context.Context, msg *message.Message) error {
	summary, err := event.Decode[event.DailySummaryReady](msg)
	if err != nil {
		slog.Error("Dropping malformed summary event", "error", err)
		return nil
	}

	heads, err := n.heads.HeadIDs(ctx)
	if err != nil {
		return err
	}
	n.hub.PublishToMany(heads, sse.Event{Event: EventDailySummary, Data: summary})
	return nil
}

// MailSummary sends the end-of-day recap to the heads.
func (n *Notifier) MailSummary(ctx context.Context, msg *message.Message) error {
	summary, err := event.Decode[event.DailySummaryReady](msg)
	if err != nil {
		slog.Error("Dropping malformed summary event", "error", err)
		return nil
	}

	to, err := n.headEmails(ctx)
	if err != nil {
		return err
	}

	mail := email.DailySummary{
		Date:    summary.Date,
		Present: summary.Present,
		Late:    summary.Late,
		Leave:   summary.Leave,
		Absent:  make([]email.SummaryLine, 0, len(summary.Absent)),
	}
	for _, a := range summary.Absent {
		mail.Absent = append(mail.Absent, email.SummaryLine{Name: a.Name, NIP: a.NIP, Role: a.Role})
	}
	if err := n.mailer.SendDailySummary(to, mail); err != nil {
		slog.Error("Failed to send daily summary", "date", summary.Date, "error", err)
	}
	return nil
}

func (n *Notifier) headEmails(ctx context.Context) ([]string, error) {
	heads, err := n.lookup.ListByRoles(ctx, []user.Role{user.RoleHead})
	if err != nil {
		return nil, err
	}
	to := make([]string, 0, len(heads))
	for _, h := range heads {
		if h.Email != "" {
			to = append(to, h.Email)
		}
	}
	return to, nil
}

func leaveLabel(kind string) string {
	if attendance.Kind(kind) == attendance.KindFurlough {
		return "Cuti"
	}
	return "Izin"
}
