// Package store abstracts the durable backing store for instrument
// catalog data and per-user holdings, plus a per-user change feed that
// fires for every committed holdings write from any origin.
package store

import "github.com/OM-MUDDAPUR/Stock-broker-app/internal/models"

// ChangeOp identifies the kind of holdings write behind a change event.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// Change describes a single committed write against a user's holdings.
// Consumers should treat any event as "re-list"; the payload carries no
// row data.
type Change struct {
	UserID    string
	HoldingID string
	Op        ChangeOp
}

// HoldingStore is the durable store adapter. Every call is an
// independent fallible operation; there is no transactional guarantee
// across calls.
type HoldingStore interface {
	// ListInstruments returns the full catalog, ordered by ticker.
	ListInstruments() ([]models.Instrument, error)

	// CreateInstrument adds an instrument to the catalog.
	CreateInstrument(ticker, name string) (*models.Instrument, error)

	// ListHoldings returns the user's holdings with instrument data
	// joined, in stable insertion order.
	ListHoldings(userID string) ([]models.Holding, error)

	// InsertHolding creates a holding for (userID, instrumentID) and
	// returns the authoritative record. Fails with DUPLICATE_HOLDING if
	// one already exists; callers are expected to check their snapshot
	// first.
	InsertHolding(userID, instrumentID string, price float64, shares int) (*models.Holding, error)

	// UpdateShares sets the share count of an existing holding.
	UpdateShares(holdingID string, shares int) error

	// DeleteHolding removes a holding entirely.
	DeleteHolding(holdingID string) error

	// SubscribeChanges registers fn for every holdings change affecting
	// userID, from any origin. The returned function unsubscribes.
	SubscribeChanges(userID string, fn func(Change)) (unsubscribe func())
}
