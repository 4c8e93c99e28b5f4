package models

// Holding is a user's position in one instrument. At most one Holding
// exists per (user, instrument) pair, and shares is always >= 1: a
// holding whose share count would drop to zero is deleted, never kept
// as a zero-share row.
//
// Price, PriceDelta and PriceDeltaPct are display state maintained by
// the price simulator; the store is the source of truth for shares only,
// so a resynchronization overwrites simulated drift with the price last
// confirmed by the store.
type Holding struct {
	Base
	UserID        string     `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_user_instrument" json:"-"`
	InstrumentID  string     `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_user_instrument" json:"instrument_id"`
	Price         float64    `gorm:"not null" json:"price"`
	PriceDelta    float64    `gorm:"not null;default:0" json:"price_delta"`
	PriceDeltaPct float64    `gorm:"not null;default:0" json:"price_delta_percent"`
	Shares        int        `gorm:"not null" json:"shares"`
	Instrument    Instrument `gorm:"foreignKey:InstrumentID" json:"instrument"`
}
