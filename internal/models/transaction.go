package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidCategory = errors.New("invalid transaction category")
	ErrInvalidStatus   = errors.New("invalid transaction status")
	ErrMissingUserID   = errors.New("transaction user_id is required")
	ErrMissingDate     = errors.New("transaction date is required")
)

// Transaction is an immutable financial record created by the ingestion process.
// ID is the external identifier and is not guaranteed to be unique, so rows are
// keyed by RecordID.
type Transaction struct {
	RecordID    uint            `gorm:"column:record_id;primaryKey;autoIncrement" json:"-" bson:"-"`
	ID          int64           `gorm:"column:id;not null;index" json:"id"`
	Date        time.Time       `gorm:"column:date;not null;index" json:"date"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Category    string          `gorm:"column:category;type:varchar(20);not null;index" json:"category"`
	Status      string          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	UserID      string          `gorm:"column:user_id;type:varchar(100);not null;index" json:"user_id"`
	UserProfile string          `gorm:"column:user_profile;type:text;not null" json:"user_profile"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate normalizes the record date to UTC and checks the closed enums
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	t.Date = t.Date.UTC()
	return t.Validate()
}

// Validate enforces the ingestion invariants for a single record
func (t *Transaction) Validate() error {
	if !IsValidCategory(t.Category) {
		return ErrInvalidCategory
	}

	if !IsValidStatus(t.Status) {
		return ErrInvalidStatus
	}

	if t.UserID == "" {
		return ErrMissingUserID
	}

	if t.Date.IsZero() {
		return ErrMissingDate
	}

	return nil
}
