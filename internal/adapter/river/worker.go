package river

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/gestloc/internal/adapter/mail"
)

// NotificationWorker renders and sends notification jobs.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]

	templates *mail.Templates
	mailer    mail.Mailer
	adminBCC  []string
}

// NewNotificationWorker creates a worker. adminBCC receives a blind copy of
// notifications that ask for it.
func NewNotificationWorker(templates *mail.Templates, mailer mail.Mailer, adminBCC []string) *NotificationWorker {
	return &NotificationWorker{
		templates: templates,
		mailer:    mailer,
		adminBCC:  adminBCC,
	}
}

// Work renders the job's template and hands it to the mailer.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	msg, err := w.templates.Render(job.Args.Template, job.Args.Vars)
	if err != nil {
		slog.ErrorContext(ctx, "rendering notification",
			"job_id", job.ID,
			"template", job.Args.Template,
			"error", err,
		)
		return fmt.Errorf("rendering notification: %w", err)
	}

	msg.To = job.Args.To
	if job.Args.BCCAdmins {
		msg.BCC = w.adminBCC
	}

	if err := w.mailer.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "sending notification",
			"job_id", job.ID,
			"template", job.Args.Template,
			"error", err,
		)
		return fmt.Errorf("sending notification: %w", err)
	}

	slog.InfoContext(ctx, "notification sent",
		"job_id", job.ID,
		"template", job.Args.Template,
		"recipients", len(msg.To),
	)
	return nil
}
