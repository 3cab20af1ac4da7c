package bid

import (
	"github.com/alpacahq/gopaca/clock"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"

	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/models/enum"
	"github.com/capclear/tenderbroker/service/shareclass"
	"github.com/capclear/tenderbroker/tberrors"
)

type BidService interface {
	Create(offerID uuid.UUID, b *models.Bid) (*models.Bid, error)
	List(offerID uuid.UUID) ([]*models.Bid, error)
	ListByInvestor(investorID uuid.UUID) ([]*models.Bid, error)
	WithTx(tx *gorm.DB) BidService
}

type bidService struct {
	BidService
	tx      *gorm.DB
	classes shareclass.ShareClassService
}

func Service(classes shareclass.ShareClassService) BidService {
	return &bidService{classes: classes}
}

func (s *bidService) WithTx(tx *gorm.DB) BidService {
	s.tx = tx
	return s
}

// Create stores a bid on an open tender offer. Bids are rejected once
// the offer has ended - settlement operates on an immutable snapshot.
func (s *bidService) Create(offerID uuid.UUID, b *models.Bid) (*models.Bid, error) {
	if err := b.Validate(); err != nil {
		return nil, tberrors.InvalidRequestParam.WithMsg(err.Error())
	}

	offer := &models.TenderOffer{}

	q := s.tx.Where("id = ?", offerID.String()).First(offer)

	if q.RecordNotFound() {
		return nil, tberrors.NotFound.WithMsg("tender offer not found")
	}

	if q.Error != nil {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	if offer.Status != enum.OfferOpen || offer.Ended(clock.Now()) {
		return nil, tberrors.OfferNotOpen
	}

	if _, err := s.classes.WithTx(s.tx).GetByName(b.ShareClassName); err != nil {
		return nil, tberrors.InvalidRequestParam.WithMsg("unknown share class")
	}

	b.TenderOfferID = offer.ID

	if err := s.tx.Create(b).Error; err != nil {
		return nil, tberrors.InternalServerError.WithError(err)
	}

	return b, nil
}

func (s *bidService) List(offerID uuid.UUID) ([]*models.Bid, error) {
	bids := []*models.Bid{}

	q := s.tx.
		Where("tender_offer_id = ?", offerID.String()).
		Order("created_at").
		Find(&bids)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return bids, nil
}

func (s *bidService) ListByInvestor(investorID uuid.UUID) ([]*models.Bid, error) {
	bids := []*models.Bid{}

	q := s.tx.
		Where("investor_id = ?", investorID.String()).
		Order("created_at").
		Find(&bids)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return bids, nil
}
