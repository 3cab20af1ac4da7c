package investor

import (
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jinzhu/gorm"

	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/tberrors"
)

type InvestorService interface {
	Create(inv *models.Investor) (*models.Investor, error)
	GetByID(id uuid.UUID) (*models.Investor, error)
	List() ([]*models.Investor, error)
	WithTx(tx *gorm.DB) InvestorService
}

type investorService struct {
	InvestorService
	tx *gorm.DB
}

func Service() InvestorService {
	return &investorService{}
}

func (s *investorService) WithTx(tx *gorm.DB) InvestorService {
	s.tx = tx
	return s
}

func (s *investorService) Create(inv *models.Investor) (*models.Investor, error) {
	if err := inv.Validate(); err != nil {
		return nil, tberrors.InvalidRequestParam.WithMsg(err.Error())
	}

	if err := s.tx.Create(inv).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			return nil, tberrors.Conflict.WithMsg("duplicate email")
		}
		return nil, tberrors.InternalServerError.WithError(err)
	}

	return inv, nil
}

func (s *investorService) GetByID(id uuid.UUID) (*models.Investor, error) {
	inv := &models.Investor{}

	q := s.tx.Where("id = ?", id.String()).First(inv)

	if q.RecordNotFound() {
		return nil, tberrors.NotFound.WithMsg("investor not found")
	}

	if q.Error != nil {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return inv, nil
}

func (s *investorService) List() ([]*models.Investor, error) {
	investors := []*models.Investor{}

	q := s.tx.Order("created_at").Find(&investors)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return investors, nil
}
