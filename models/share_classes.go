package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// ShareClass partitions shares into pools with independent supply
// ceilings. Fractional classes (convertible instrument equivalents)
// may carry non-integer totals and allocations.
type ShareClass struct {
	ID              string          `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"-"`
	Name            string          `json:"name" gorm:"not null;unique_index" sql:"type:text"`
	AvailableShares decimal.Decimal `json:"available_shares" gorm:"type:decimal;not null"`
	Fractional      bool            `json:"fractional" gorm:"not null" sql:"default:'FALSE'"`
}

func (c *ShareClass) BeforeCreate(scope *gorm.Scope) error {
	if c.ID == "" {
		c.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", c.ID)
}

func (c *ShareClass) Validate() error {
	if err := validation.Validate(c.Name, validation.Required, validation.Length(1, 100)); err != nil {
		return err
	}
	if c.AvailableShares.Sign() < 0 {
		return errors.New("available_shares must not be negative")
	}
	return nil
}
