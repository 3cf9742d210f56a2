// Package mailbox provides access to the mail store the agent ingests from.
package mailbox

import (
	"context"

	"mailfacts/internal/models"
)

// Source fetches messages received within the trailing window from one
// folder. Implementations return messages with StoreID and EntryID set so
// downstream writes stay idempotent across repeated scans.
type Source interface {
	FetchRecent(ctx context.Context, folder string, windowDays int) ([]models.Message, error)
}
