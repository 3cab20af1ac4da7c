package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
)

type Investor struct {
	ID        string     `json:"id" gorm:"primary_key" sql:"type:uuid;"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"-"`
	DeletedAt *time.Time `json:"-"`
	Email     string     `json:"email" gorm:"not null;unique_index" sql:"type:text"`
	Name      string     `json:"name" gorm:"not null" sql:"type:text"`
	// Relations
	Bids []Bid `json:"-" gorm:"ForeignKey:InvestorID"`
}

func (i *Investor) BeforeCreate(scope *gorm.Scope) error {
	if i.ID == "" {
		i.ID = uuid.Must(uuid.NewV4()).String()
	}
	return scope.SetColumn("id", i.ID)
}

func (i *Investor) IDAsUUID() uuid.UUID {
	id, _ := uuid.FromString(i.ID)
	return id
}

func (i *Investor) Validate() error {
	if err := validation.Validate(i.Email, validation.Required, is.Email); err != nil {
		return err
	}
	return validation.Validate(i.Name, validation.Required, validation.Length(1, 255))
}
