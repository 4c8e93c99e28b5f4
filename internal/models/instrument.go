package models

// Instrument is a tradable entity from the static catalog. Catalog rows
// are immutable reference data: seeded once, never mutated or deleted
// during a session.
type Instrument struct {
	Base
	Ticker string `gorm:"not null;uniqueIndex" json:"ticker"`
	Name   string `gorm:"not null" json:"name"`
}
