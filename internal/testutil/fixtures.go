package testutil

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/models"
)

// CreateTestUser inserts a user with a bcrypt-hashed password.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestInstrument inserts a catalog instrument.
func CreateTestInstrument(t *testing.T, db *gorm.DB, ticker string) *models.Instrument {
	t.Helper()

	instrument := &models.Instrument{
		Ticker: ticker,
		Name:   fmt.Sprintf("%s Inc.", ticker),
	}
	if err := db.Create(instrument).Error; err != nil {
		t.Fatalf("failed to create test instrument: %v", err)
	}
	return instrument
}

// CreateTestHolding inserts a holding for the given user and instrument.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID, instrumentID string, price float64, shares int) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		UserID:       userID,
		InstrumentID: instrumentID,
		Price:        price,
		Shares:       shares,
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}
