package tenderoffer

import (
	"github.com/alpacahq/gopaca/clock"
	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/capclear/tenderbroker/auction"
	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/models/enum"
	"github.com/capclear/tenderbroker/service/shareclass"
	"github.com/capclear/tenderbroker/tberrors"
)

// Overrides optionally replaces the offer's own ceilings for a single
// allocator run. Used by what-if previews; settlement always runs with
// the offer's persisted ceilings.
type Overrides struct {
	TotalAmountLimitCents *int64
	TotalShareLimit       *decimal.Decimal
}

// BidAllocation is one bid's share of an allocator run.
type BidAllocation struct {
	BidID          string          `json:"bid_id"`
	InvestorID     string          `json:"investor_id"`
	ShareClass     string          `json:"share_class"`
	Quantity       decimal.Decimal `json:"quantity"`
	PriceCents     int64           `json:"price_cents"`
	AcceptedShares decimal.Decimal `json:"accepted_shares"`
}

// Allocation is the outcome of an allocator run over an offer's bids.
type Allocation struct {
	ClearingPriceCents *int64          `json:"clearing_price_cents"`
	AcceptedShares     decimal.Decimal `json:"accepted_shares"`
	AcceptedCents      decimal.Decimal `json:"accepted_cents"`
	Bids               []BidAllocation `json:"bids"`
}

type TenderOfferService interface {
	Create(offer *models.TenderOffer) (*models.TenderOffer, error)
	GetByID(id uuid.UUID) (*models.TenderOffer, error)
	List() ([]*models.TenderOffer, error)
	Cancel(id uuid.UUID) (*models.TenderOffer, error)
	Preview(id uuid.UUID, overrides Overrides) (*Allocation, error)
	Settle(id uuid.UUID) (*models.TenderOffer, error)
	WithTx(tx *gorm.DB) TenderOfferService
}

type tenderOfferService struct {
	TenderOfferService
	tx      *gorm.DB
	classes shareclass.ShareClassService
}

func Service(classes shareclass.ShareClassService) TenderOfferService {
	return &tenderOfferService{classes: classes}
}

func (s *tenderOfferService) WithTx(tx *gorm.DB) TenderOfferService {
	s.tx = tx
	return s
}

func (s *tenderOfferService) Create(offer *models.TenderOffer) (*models.TenderOffer, error) {
	if err := offer.Validate(); err != nil {
		return nil, tberrors.InvalidRequestParam.WithMsg(err.Error())
	}

	if err := s.tx.Create(offer).Error; err != nil {
		return nil, tberrors.InternalServerError.WithError(err)
	}

	return offer, nil
}

func (s *tenderOfferService) GetByID(id uuid.UUID) (*models.TenderOffer, error) {
	offer := &models.TenderOffer{}

	q := s.tx.Where("id = ?", id.String()).First(offer)

	if q.RecordNotFound() {
		return nil, tberrors.NotFound.WithMsg("tender offer not found")
	}

	if q.Error != nil {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return offer, nil
}

func (s *tenderOfferService) List() ([]*models.TenderOffer, error) {
	offers := []*models.TenderOffer{}

	q := s.tx.Order("created_at").Find(&offers)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return offers, nil
}

func (s *tenderOfferService) Cancel(id uuid.UUID) (*models.TenderOffer, error) {
	offer, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if offer.Status != enum.OfferOpen {
		return nil, tberrors.AlreadySettled
	}

	offer.Status = enum.OfferCanceled

	if err := s.tx.Save(offer).Error; err != nil {
		return nil, tberrors.InternalServerError.WithError(err)
	}

	return offer, nil
}

// Preview runs the allocator over the offer's current bids without
// persisting anything. Ceiling overrides allow what-if runs; the
// computation is pure, so previewing has no side effects and is safe
// to repeat.
func (s *tenderOfferService) Preview(id uuid.UUID, overrides Overrides) (*Allocation, error) {
	offer, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	_, alloc, err := s.clear(offer, overrides)
	return alloc, err
}

// Settle closes an ended offer: it runs the allocator over the final bid
// snapshot and persists the clearing price on the offer and the accepted
// shares on every bid. The caller owns the surrounding transaction, so
// partial writes are never observed. A settled offer cannot be settled
// again.
func (s *tenderOfferService) Settle(id uuid.UUID) (*models.TenderOffer, error) {
	offer, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	switch {
	case offer.Status == enum.OfferSettled:
		return nil, tberrors.AlreadySettled
	case offer.Status != enum.OfferOpen:
		return nil, tberrors.OfferNotOpen
	case !offer.Ended(clock.Now()):
		return nil, tberrors.OfferStillOpen
	}

	bids, alloc, err := s.clear(offer, Overrides{})
	if err != nil {
		return nil, err
	}

	for i, b := range bids {
		b.AcceptedShares = alloc.Bids[i].AcceptedShares
		if err := s.tx.Save(b).Error; err != nil {
			return nil, tberrors.InternalServerError.WithError(
				errors.Wrap(err, "failed to persist bid allocation"))
		}
	}

	now := clock.Now()
	offer.AcceptedPriceCents = alloc.ClearingPriceCents
	offer.Status = enum.OfferSettled
	offer.SettledAt = &now

	if err := s.tx.Save(offer).Error; err != nil {
		return nil, tberrors.InternalServerError.WithError(
			errors.Wrap(err, "failed to persist settlement"))
	}

	return offer, nil
}

// clear loads the offer's bids and class ceilings and runs the pure
// allocator over them. Bids are returned in the same order as the
// allocation entries.
func (s *tenderOfferService) clear(offer *models.TenderOffer, overrides Overrides) ([]*models.Bid, *Allocation, error) {
	bids := []*models.Bid{}

	q := s.tx.
		Where("tender_offer_id = ?", offer.ID).
		Order("created_at").
		Find(&bids)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, nil, tberrors.InternalServerError.WithError(q.Error)
	}

	limits, err := s.classes.WithTx(s.tx).Limits()
	if err != nil {
		return nil, nil, err
	}

	shareLimit := offer.TotalShareLimit
	if overrides.TotalShareLimit != nil {
		shareLimit = *overrides.TotalShareLimit
	}

	amountLimit := offer.TotalAmountLimitCents
	if overrides.TotalAmountLimitCents != nil {
		amountLimit = *overrides.TotalAmountLimitCents
	}

	in := auction.Input{
		Bids:                  make([]*auction.Bid, len(bids)),
		ClassLimits:           limits,
		TotalShareLimit:       shareLimit,
		TotalAmountLimitCents: amountLimit,
	}

	for i, b := range bids {
		in.Bids[i] = &auction.Bid{
			ID:         b.IDAsUUID(),
			InvestorID: uuid.FromStringOrNil(b.InvestorID),
			ShareClass: b.ShareClassName,
			Quantity:   b.Quantity,
			PriceCents: b.PriceCents,
		}
	}

	res := auction.Clear(in)

	alloc := &Allocation{
		ClearingPriceCents: res.ClearingPriceCents,
		AcceptedShares:     res.AcceptedShares,
		AcceptedCents:      res.AcceptedCents,
		Bids:               make([]BidAllocation, len(bids)),
	}

	for i, b := range bids {
		alloc.Bids[i] = BidAllocation{
			BidID:          b.ID,
			InvestorID:     b.InvestorID,
			ShareClass:     b.ShareClassName,
			Quantity:       b.Quantity,
			PriceCents:     b.PriceCents,
			AcceptedShares: in.Bids[i].AcceptedShares,
		}
	}

	return bids, alloc, nil
}
