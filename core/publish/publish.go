// Package publish defines how solved schedules leave the process.
package publish

import (
	"context"
	"errors"

	"github.com/kilianp07/shiftplan/pkg/export"
)

// ErrPublishFailed is returned when every publish attempt failed.
var ErrPublishFailed = errors.New("schedule publish failed")

// Publisher delivers a solved schedule document to downstream consumers and
// returns the message identifier it was sent under.
type Publisher interface {
	PublishSchedule(ctx context.Context, doc export.Document) (messageID string, err error)
	Close()
}

// NopPublisher discards documents.
type NopPublisher struct{}

func (NopPublisher) PublishSchedule(context.Context, export.Document) (string, error) { return "", nil }
func (NopPublisher) Close()                                                           {}
