package tenderoffer

import (
	"testing"
	"time"

	"github.com/alpacahq/gopaca/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/capclear/tenderbroker/dbtest"
	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/models/enum"
	"github.com/capclear/tenderbroker/service/shareclass"
	"github.com/capclear/tenderbroker/tberrors"
)

type TenderOfferTestSuite struct {
	dbtest.Suite
	investor *models.Investor
}

func TestTenderOfferTestSuite(t *testing.T) {
	suite.Run(t, new(TenderOfferTestSuite))
}

func (s *TenderOfferTestSuite) SetupSuite() {
	s.SetupDB()

	classes := []*models.ShareClass{
		{Name: "COMMON", AvailableShares: decimal.New(10000, 0)},
		{Name: "SAFE", AvailableShares: decimal.New(100000, 0), Fractional: true},
	}

	for _, class := range classes {
		if err := db.DB().Create(class).Error; err != nil {
			assert.FailNow(s.T(), err.Error())
		}
	}

	s.investor = &models.Investor{
		Email: "seller@example.com",
		Name:  "Test Seller",
	}

	if err := db.DB().Create(s.investor).Error; err != nil {
		assert.FailNow(s.T(), err.Error())
	}
}

func (s *TenderOfferTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *TenderOfferTestSuite) service(tx *gorm.DB) TenderOfferService {
	return Service(shareclass.Service()).WithTx(tx)
}

func (s *TenderOfferTestSuite) createOffer(startsAt, endsAt time.Time) *models.TenderOffer {
	offer := &models.TenderOffer{
		Name:                  "quarterly buyback",
		StartsAt:              startsAt,
		EndsAt:                endsAt,
		TotalShareLimit:       decimal.New(150, 0),
		TotalAmountLimitCents: 100000000,
	}

	tx := db.Begin()
	offer, err := s.service(tx).Create(offer)
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	return offer
}

func (s *TenderOfferTestSuite) createBid(offer *models.TenderOffer, class, qty string, price int64) *models.Bid {
	quantity, _ := decimal.NewFromString(qty)
	bid := &models.Bid{
		TenderOfferID:  offer.ID,
		InvestorID:     s.investor.ID,
		ShareClassName: class,
		Quantity:       quantity,
		PriceCents:     price,
	}

	require.Nil(s.T(), db.DB().Create(bid).Error)

	return bid
}

func (s *TenderOfferTestSuite) TestCreateAndGet() {
	offer := s.createOffer(
		time.Now().Add(-time.Hour),
		time.Now().Add(time.Hour))

	assert.NotEmpty(s.T(), offer.ID)
	assert.Equal(s.T(), enum.OfferOpen, offer.Status)

	stored, err := s.service(db.DB()).GetByID(offer.IDAsUUID())
	require.Nil(s.T(), err)
	assert.Equal(s.T(), offer.ID, stored.ID)
	assert.Nil(s.T(), stored.AcceptedPriceCents)
}

func (s *TenderOfferTestSuite) TestCreateInvalid() {
	offer := &models.TenderOffer{
		Name:                  "backwards window",
		StartsAt:              time.Now(),
		EndsAt:                time.Now().Add(-time.Hour),
		TotalShareLimit:       decimal.New(100, 0),
		TotalAmountLimitCents: 1000,
	}

	tx := db.Begin()
	defer tx.Rollback()

	_, err := s.service(tx).Create(offer)
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), tberrors.InvalidRequestParam.Code, err.(*tberrors.Error).Code)
}

func (s *TenderOfferTestSuite) TestSettle() {
	offer := s.createOffer(
		time.Now().Add(-48*time.Hour),
		time.Now().Add(-time.Hour))

	b1 := s.createBid(offer, "COMMON", "100", 1000)
	b2 := s.createBid(offer, "COMMON", "200", 1200)

	tx := db.Begin()
	settled, err := s.service(tx).Settle(offer.IDAsUUID())
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.Equal(s.T(), enum.OfferSettled, settled.Status)
	require.NotNil(s.T(), settled.AcceptedPriceCents)
	assert.EqualValues(s.T(), 1200, *settled.AcceptedPriceCents)
	assert.NotNil(s.T(), settled.SettledAt)

	// share ceiling of 150 rations both bids by half
	stored := &models.Bid{}
	require.Nil(s.T(), db.DB().Where("id = ?", b1.ID).First(stored).Error)
	assert.True(s.T(), stored.AcceptedShares.Equal(decimal.New(50, 0)))

	require.Nil(s.T(), db.DB().Where("id = ?", b2.ID).First(stored).Error)
	assert.True(s.T(), stored.AcceptedShares.Equal(decimal.New(100, 0)))

	// settling twice is rejected
	tx = db.Begin()
	defer tx.Rollback()

	_, err = s.service(tx).Settle(offer.IDAsUUID())
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), tberrors.AlreadySettled.Code, err.(*tberrors.Error).Code)
}

func (s *TenderOfferTestSuite) TestSettleBeforeEnd() {
	offer := s.createOffer(
		time.Now().Add(-time.Hour),
		time.Now().Add(time.Hour))

	tx := db.Begin()
	defer tx.Rollback()

	_, err := s.service(tx).Settle(offer.IDAsUUID())
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), tberrors.OfferStillOpen.Code, err.(*tberrors.Error).Code)
}

func (s *TenderOfferTestSuite) TestSettleNoBids() {
	offer := s.createOffer(
		time.Now().Add(-48*time.Hour),
		time.Now().Add(-time.Hour))

	tx := db.Begin()
	settled, err := s.service(tx).Settle(offer.IDAsUUID())
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.Equal(s.T(), enum.OfferSettled, settled.Status)
	assert.Nil(s.T(), settled.AcceptedPriceCents)
}

func (s *TenderOfferTestSuite) TestCancel() {
	offer := s.createOffer(
		time.Now().Add(-48*time.Hour),
		time.Now().Add(-time.Hour))

	tx := db.Begin()
	canceled, err := s.service(tx).Cancel(offer.IDAsUUID())
	require.Nil(s.T(), err)
	require.Nil(s.T(), tx.Commit().Error)

	assert.Equal(s.T(), enum.OfferCanceled, canceled.Status)

	// a canceled offer cannot be settled
	tx = db.Begin()
	defer tx.Rollback()

	_, err = s.service(tx).Settle(offer.IDAsUUID())
	require.NotNil(s.T(), err)
	assert.Equal(s.T(), tberrors.OfferNotOpen.Code, err.(*tberrors.Error).Code)
}

func (s *TenderOfferTestSuite) TestPreview() {
	offer := s.createOffer(
		time.Now().Add(-time.Hour),
		time.Now().Add(time.Hour))

	s.createBid(offer, "COMMON", "100", 1000)
	s.createBid(offer, "COMMON", "200", 1200)

	alloc, err := s.service(db.DB()).Preview(offer.IDAsUUID(), Overrides{})
	require.Nil(s.T(), err)
	require.NotNil(s.T(), alloc.ClearingPriceCents)
	assert.EqualValues(s.T(), 1200, *alloc.ClearingPriceCents)
	assert.True(s.T(), alloc.AcceptedShares.Equal(decimal.New(150, 0)))
	require.Len(s.T(), alloc.Bids, 2)

	// previewing persists nothing
	stored := &models.Bid{}
	require.Nil(s.T(), db.DB().Where("id = ?", alloc.Bids[0].BidID).First(stored).Error)
	assert.True(s.T(), stored.AcceptedShares.Equal(decimal.Zero))

	// tighter ceiling override changes the outcome without touching the offer
	limit := decimal.New(60, 0)
	alloc, err = s.service(db.DB()).Preview(offer.IDAsUUID(), Overrides{TotalShareLimit: &limit})
	require.Nil(s.T(), err)
	assert.True(s.T(), alloc.AcceptedShares.Equal(decimal.New(60, 0)))

	stored2, err := s.service(db.DB()).GetByID(offer.IDAsUUID())
	require.Nil(s.T(), err)
	assert.True(s.T(), stored2.TotalShareLimit.Equal(decimal.New(150, 0)))
}
