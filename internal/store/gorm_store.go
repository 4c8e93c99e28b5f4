package store

import (
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"
	"gorm.io/gorm"

	apperrors "github.com/OM-MUDDAPUR/Stock-broker-app/internal/errors"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/models"
)

const (
	catalogKey = "instruments"
	catalogTTL = 5 * time.Minute
)

// gormHoldingStore is the GORM-backed HoldingStore. Catalog reads go
// through a ristretto cache; holdings reads always hit the database,
// since they are the source of truth the engine resynchronizes from.
type gormHoldingStore struct {
	db       *gorm.DB
	notifier *Notifier
	catalog  *ristretto.Cache
}

// NewGormStore creates a HoldingStore backed by db, with its own change
// notifier and catalog cache.
func NewGormStore(db *gorm.DB) (HoldingStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &gormHoldingStore{db: db, notifier: NewNotifier(), catalog: cache}, nil
}

// ListInstruments returns the catalog ordered by ticker, served from
// cache when warm.
func (s *gormHoldingStore) ListInstruments() ([]models.Instrument, error) {
	if v, ok := s.catalog.Get(catalogKey); ok {
		return v.([]models.Instrument), nil
	}

	var instruments []models.Instrument
	if err := s.db.Order("ticker ASC").Find(&instruments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.catalog.SetWithTTL(catalogKey, instruments, 1, catalogTTL)
	return instruments, nil
}

// CreateInstrument adds a catalog entry and invalidates the cache.
func (s *gormHoldingStore) CreateInstrument(ticker, name string) (*models.Instrument, error) {
	if ticker == "" || name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ticker and name are required")
	}

	var count int64
	if err := s.db.Model(&models.Instrument{}).Where("ticker = ?", ticker).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateInstrument
	}

	instrument := &models.Instrument{Ticker: ticker, Name: name}
	if err := s.db.Create(instrument).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.catalog.Del(catalogKey)
	return instrument, nil
}

// ListHoldings returns the user's holdings with instruments joined.
// Ordering by created_at keeps the sequence stable across re-lists;
// UUIDv7 keys make insertion order and key order agree.
func (s *gormHoldingStore) ListHoldings(userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Preload("Instrument").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}

// InsertHolding creates a holding and returns the authoritative record
// with instrument data joined.
func (s *gormHoldingStore) InsertHolding(userID, instrumentID string, price float64, shares int) (*models.Holding, error) {
	if shares < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shares must be at least 1")
	}

	var count int64
	if err := s.db.Model(&models.Holding{}).
		Where("user_id = ? AND instrument_id = ?", userID, instrumentID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateHolding
	}

	var instrument models.Instrument
	if err := s.db.First(&instrument, "id = ?", instrumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstrumentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	holding := &models.Holding{
		UserID:       userID,
		InstrumentID: instrumentID,
		Price:        price,
		Shares:       shares,
	}
	if err := s.db.Create(holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	holding.Instrument = instrument

	s.notifier.Publish(Change{UserID: userID, HoldingID: holding.ID, Op: ChangeInsert})
	return holding, nil
}

// UpdateShares sets the share count of an existing holding.
func (s *gormHoldingStore) UpdateShares(holdingID string, shares int) error {
	if shares < 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "shares must be at least 1")
	}

	holding, err := s.getHolding(holdingID)
	if err != nil {
		return err
	}

	if err := s.db.Model(holding).Update("shares", shares).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.Publish(Change{UserID: holding.UserID, HoldingID: holdingID, Op: ChangeUpdate})
	return nil
}

// DeleteHolding removes a holding row entirely, so the (user, instrument)
// unique index allows the instrument to be bought again later.
func (s *gormHoldingStore) DeleteHolding(holdingID string) error {
	holding, err := s.getHolding(holdingID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(holding).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.Publish(Change{UserID: holding.UserID, HoldingID: holdingID, Op: ChangeDelete})
	return nil
}

// SubscribeChanges registers fn on the store's notifier.
func (s *gormHoldingStore) SubscribeChanges(userID string, fn func(Change)) func() {
	return s.notifier.Subscribe(userID, fn)
}

func (s *gormHoldingStore) getHolding(holdingID string) (*models.Holding, error) {
	var holding models.Holding
	if err := s.db.First(&holding, "id = ?", holdingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}
