package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"github.com/capclear/tenderbroker/models/enum"
)

// TenderOffer is a time-boxed buyback event. Bids accumulate until
// EndsAt; settlement computes the uniform clearing price and writes it
// onto AcceptedPriceCents, with per-bid allocations on each Bid.
type TenderOffer struct {
	ID                    string           `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"-"`
	DeletedAt             *time.Time       `json:"-"`
	Name                  string           `json:"name" gorm:"not null" sql:"type:text"`
	StartsAt              time.Time        `json:"starts_at" gorm:"not null"`
	EndsAt                time.Time        `json:"ends_at" gorm:"not null;index"`
	TotalShareLimit       decimal.Decimal  `json:"total_share_limit" gorm:"type:decimal;not null"`
	TotalAmountLimitCents int64            `json:"total_amount_limit_cents" gorm:"not null"`
	Status                enum.OfferStatus `json:"status" gorm:"not null;index" sql:"type:text;default:'OPEN'"`
	AcceptedPriceCents    *int64           `json:"accepted_price_cents"`
	SettledAt             *time.Time       `json:"settled_at"`
	// Relations
	Bids []Bid `json:"-" gorm:"ForeignKey:TenderOfferID"`
}

func (o *TenderOffer) BeforeCreate(scope *gorm.Scope) error {
	if o.ID == "" {
		o.ID = uuid.Must(uuid.NewV4()).String()
	}
	if err := scope.SetColumn("id", o.ID); err != nil {
		return err
	}
	if o.Status == "" {
		o.Status = enum.OfferOpen
	}
	return scope.SetColumn("status", o.Status)
}

func (o *TenderOffer) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(o.ID)
	return id
}

// Ended reports whether the bidding window has closed as of now.
func (o *TenderOffer) Ended(now time.Time) bool {
	return now.After(o.EndsAt)
}

func (o *TenderOffer) Validate() error {
	if err := validation.Validate(o.Name, validation.Required, validation.Length(1, 255)); err != nil {
		return err
	}
	if !o.EndsAt.After(o.StartsAt) {
		return errors.New("ends_at must be after starts_at")
	}
	if o.TotalShareLimit.Sign() <= 0 {
		return errors.New("total_share_limit must be positive")
	}
	if o.TotalAmountLimitCents <= 0 {
		return errors.New("total_amount_limit_cents must be positive")
	}
	return nil
}
