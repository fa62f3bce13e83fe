package repository

import (
	"errors"
	"field-sales-bot/internal/models"
	"time"

	"gorm.io/gorm"
)

var ErrLeadNotFound = errors.New("lead not found")

type LeadRepository interface {
	Create(lead *models.Lead) error
	GetByID(id uint) (*models.Lead, error)
	GetByStatuses(statuses []string) ([]models.Lead, error)
	UpdateStatus(id uint, status string, contactedAt time.Time) error
	GetAll() ([]models.Lead, error)
}

type GormLeadRepository struct {
	db *gorm.DB
}

func NewGormLeadRepository(db *gorm.DB) (*GormLeadRepository, error) {
	if err := db.AutoMigrate(&models.Lead{}); err != nil {
		return nil, err
	}
	return &GormLeadRepository{db: db}, nil
}

func (r *GormLeadRepository) Create(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

func (r *GormLeadRepository) GetByID(id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *GormLeadRepository) GetByStatuses(statuses []string) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Where("status IN ?", statuses).
		Order("id").
		Find(&leads).Error
	return leads, err
}

// UpdateStatus sets the status and stamps the contact time.
func (r *GormLeadRepository) UpdateStatus(id uint, status string, contactedAt time.Time) error {
	result := r.db.Model(&models.Lead{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"last_contact": contactedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *GormLeadRepository) GetAll() ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Order("id").Find(&leads).Error
	return leads, err
}
