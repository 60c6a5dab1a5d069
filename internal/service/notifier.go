package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ReviewEvent describes a completed submission review for downstream
// consumers (notification fan-out, dashboards).
type ReviewEvent struct {
	SubmissionID uint      `json:"submission_id"`
	HomeworkID   uint      `json:"homework_id"`
	StudentID    uint      `json:"student_id"`
	Status       string    `json:"status"`
	Grade        *int      `json:"grade,omitempty"`
	ReviewedBy   uint      `json:"reviewed_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ReviewNotifier publishes review outcomes after they have committed.
// Delivery is best effort; the review itself never depends on it.
type ReviewNotifier interface {
	NotifyReviewed(ctx context.Context, event ReviewEvent) error
}

type natsReviewNotifier struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSReviewNotifier publishes review events to a NATS subject.
func NewNATSReviewNotifier(conn *nats.Conn, subject string, logger zerolog.Logger) ReviewNotifier {
	if subject == "" {
		subject = "entbridge.submissions.reviewed"
	}
	return &natsReviewNotifier{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "review_notifier").Logger(),
	}
}

func (n *natsReviewNotifier) NotifyReviewed(_ context.Context, event ReviewEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.conn.Publish(n.subject, payload)
}
