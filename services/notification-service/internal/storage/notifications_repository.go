package storage

import (
	"context"
	"encoding/json"

	"github.com/jcallahan-dev/trimline/libs/db"
)

type Notification struct {
	AppointmentID string
	Type          string // confirmation or cancellation
	Channel       string
	Recipient     string
	Subject       string
	Payload       map[string]any
	Status        string // sent or failed
	FailureReason string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO notifications (appointment_id, notification_type, channel, recipient, subject, payload, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
	`, n.AppointmentID, n.Type, n.Channel, n.Recipient, n.Subject, payload, n.Status, n.FailureReason)
	return err
}
