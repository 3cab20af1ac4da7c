package settlement

import (
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"

	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/models/enum"
	"github.com/capclear/tenderbroker/service/shareclass"
	"github.com/capclear/tenderbroker/service/tenderoffer"
	"github.com/capclear/tenderbroker/workers/common"
)

type settlementWorker struct {
	settle func(tx *gorm.DB, id uuid.UUID) error
	done   chan struct{}
}

var worker *settlementWorker

// Work finds open tender offers whose bidding window has closed and
// settles each one in its own serializable transaction, so a failure on
// one offer never leaves another half-written.
func Work() {
	if worker == nil {
		worker = &settlementWorker{
			settle: func(tx *gorm.DB, id uuid.UUID) error {
				_, err := tenderoffer.Service(shareclass.Service()).WithTx(tx).Settle(id)
				return err
			},
			done: make(chan struct{}, 1),
		}
		worker.done <- struct{}{}
	}

	// make sure not to overlap if the work routine is taking long
	if common.WaitTimeout(worker.done, time.Second) {
		// timed out, so let's skip this round and wait until it finishes
		return
	}

	defer func() {
		worker.done <- struct{}{}
	}()

	offers := []*models.TenderOffer{}

	q := db.DB().
		Where("status = ? AND ends_at < ?", enum.OfferOpen, clock.Now()).
		Find(&offers)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		log.Error("settlement worker database error", "error", q.Error)
		return
	}

	for _, offer := range offers {
		worker.process(offer)
	}
}

func (w *settlementWorker) process(offer *models.TenderOffer) {
	tx := db.Serializable()

	if err := w.settle(tx, offer.IDAsUUID()); err != nil {
		tx.Rollback()
		log.Error(
			"settlement failed",
			"tender_offer", offer.ID,
			"error", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Error(
			"settlement commit failed",
			"tender_offer", offer.ID,
			"error", err)
		return
	}

	log.Info("tender offer settled", "tender_offer", offer.ID)
}
