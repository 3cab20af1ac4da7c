package migration

import (
	"github.com/jinzhu/gorm"
	gormigrate "gopkg.in/gormigrate.v1"

	"github.com/capclear/tenderbroker/models"
)

// Migration contains all of the incremental migrations that the database
// requires to keep its schema and models up to date with current
// tenderbroker source code.
func Migration(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// initial migration
		{
			ID: "202508121104",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.Investor{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.ShareClass{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.TenderOffer{}).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.Bid{}).Error
			},
		},
		// one investor can hold many bids per offer, but settlement reads
		// them by offer - composite index keeps that scan cheap
		{
			ID: "202508201742",
			Migrate: func(tx *gorm.DB) error {
				return tx.Model(&models.Bid{}).
					AddIndex("idx_bids_offer_investor", "tender_offer_id", "investor_id").Error
			},
		},
	})
}
