package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// Compile-time check: Notifier implements domain.Notifier.
var _ domain.Notifier = (*Notifier)(nil)

// NotificationJobArgs carries one email to send. River serializes it as JSON
// into its job table, so the worker never needs to query the database.
type NotificationJobArgs struct {
	Template  string            `json:"template"`
	To        []string          `json:"to"`
	Vars      map[string]string `json:"vars"`
	BCCAdmins bool              `json:"bcc_admins"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "notification.send" }

// InsertOpts makes every notification a single attempt: a failed send is
// logged by the worker and never retried.
func (NotificationJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Notifier implements domain.Notifier by enqueuing River jobs.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Notify enqueues the notification for asynchronous delivery.
func (n *Notifier) Notify(ctx context.Context, msg domain.Notification) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("notification %q has no recipient", msg.Template)
	}

	_, err := n.client.Insert(ctx, NotificationJobArgs{
		Template:  msg.Template,
		To:        msg.To,
		Vars:      msg.Vars,
		BCCAdmins: msg.BCCAdmins,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}
