package models

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Bid is an investor's offer to sell Quantity shares of one class at
// PriceCents or better. Bids are immutable once the offer has ended;
// settlement fills in AcceptedShares.
type Bid struct {
	ID             string          `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"-"`
	TenderOfferID  string          `json:"tender_offer_id" gorm:"not null;index" sql:"type:uuid"`
	InvestorID     string          `json:"investor_id" gorm:"not null;index" sql:"type:uuid"`
	ShareClassName string          `json:"share_class" gorm:"not null" sql:"type:text"`
	Quantity       decimal.Decimal `json:"quantity" gorm:"type:decimal;not null"`
	PriceCents     int64           `json:"price_cents" gorm:"not null"`
	AcceptedShares decimal.Decimal `json:"accepted_shares" gorm:"type:decimal"`
}

func (b *Bid) BeforeCreate(scope *gorm.Scope) error {
	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", b.ID)
}

func (b *Bid) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(b.ID)
	return id
}

func (b *Bid) Validate() error {
	if b.Quantity.Sign() <= 0 {
		return errors.New("quantity must be positive")
	}
	if b.PriceCents <= 0 {
		return errors.New("price_cents must be positive")
	}
	if b.ShareClassName == "" {
		return errors.New("share_class is required")
	}
	return nil
}
