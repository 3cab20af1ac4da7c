package shareclass

import (
	"strings"

	"github.com/jinzhu/gorm"

	"github.com/capclear/tenderbroker/auction"
	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/tberrors"
)

type ShareClassService interface {
	Create(class *models.ShareClass) (*models.ShareClass, error)
	GetByName(name string) (*models.ShareClass, error)
	List() ([]*models.ShareClass, error)
	Limits() (map[string]auction.ClassLimit, error)
	WithTx(tx *gorm.DB) ShareClassService
}

type shareClassService struct {
	ShareClassService
	tx *gorm.DB
}

func Service() ShareClassService {
	return &shareClassService{}
}

func (s *shareClassService) WithTx(tx *gorm.DB) ShareClassService {
	s.tx = tx
	return s
}

func (s *shareClassService) Create(class *models.ShareClass) (*models.ShareClass, error) {
	if err := class.Validate(); err != nil {
		return nil, tberrors.InvalidRequestParam.WithMsg(err.Error())
	}

	if err := s.tx.Create(class).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			return nil, tberrors.Conflict.WithMsg("duplicate share class name")
		}
		return nil, tberrors.InternalServerError.WithError(err)
	}

	return class, nil
}

func (s *shareClassService) GetByName(name string) (*models.ShareClass, error) {
	class := &models.ShareClass{}

	q := s.tx.Where("name = ?", name).First(class)

	if q.RecordNotFound() {
		return nil, tberrors.NotFound.WithMsg("share class not found")
	}

	if q.Error != nil {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return class, nil
}

func (s *shareClassService) List() ([]*models.ShareClass, error) {
	classes := []*models.ShareClass{}

	q := s.tx.Order("name").Find(&classes)

	if q.Error != nil && q.Error != gorm.ErrRecordNotFound {
		return nil, tberrors.InternalServerError.WithError(q.Error)
	}

	return classes, nil
}

// Limits maps every share class to its allocator ceiling.
func (s *shareClassService) Limits() (map[string]auction.ClassLimit, error) {
	classes, err := s.List()
	if err != nil {
		return nil, err
	}

	limits := make(map[string]auction.ClassLimit, len(classes))
	for _, class := range classes {
		limits[class.Name] = auction.ClassLimit{
			Available:  class.AvailableShares,
			Fractional: class.Fractional,
		}
	}

	return limits, nil
}
