package repository

import (
	"errors"
	"field-sales-bot/internal/models"
	"time"

	"gorm.io/gorm"
)

type LeaveRepository interface {
	Create(record *models.LeaveRecord) error
	ReplaceGlobalRange(from, to time.Time, records []models.LeaveRecord) error
	GetByID(id uint) (*models.LeaveRecord, error)
	GetByRange(from, to time.Time) ([]models.LeaveRecord, error)
	GetByDate(date time.Time) ([]models.LeaveRecord, error)
	Delete(id uint) error
}

type GormLeaveRepository struct {
	db *gorm.DB
}

func NewGormLeaveRepository(db *gorm.DB) (*GormLeaveRepository, error) {
	if err := db.AutoMigrate(&models.LeaveRecord{}); err != nil {
		return nil, err
	}
	return &GormLeaveRepository{db: db}, nil
}

func (r *GormLeaveRepository) Create(record *models.LeaveRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	record.Date = models.DateOnly(record.Date)
	return r.db.Create(record).Error
}

// ReplaceGlobalRange swaps the office closures between from and to for
// records in one transaction. Personal leave in the range is kept.
func (r *GormLeaveRepository) ReplaceGlobalRange(from, to time.Time, records []models.LeaveRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("scope = ? AND date >= ? AND date <= ?",
			models.LeaveScopeGlobal, models.DateOnly(from), models.DateOnly(to)).
			Delete(&models.LeaveRecord{}).Error
		if err != nil {
			return err
		}

		if len(records) == 0 {
			return nil
		}
		for i := range records {
			if err := records[i].Validate(); err != nil {
				return err
			}
			records[i].Date = models.DateOnly(records[i].Date)
		}
		return tx.Create(&records).Error
	})
}

func (r *GormLeaveRepository) GetByID(id uint) (*models.LeaveRecord, error) {
	var record models.LeaveRecord
	result := r.db.First(&record, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &record, nil
}

// GetByRange returns every record with from <= date <= to, oldest first.
func (r *GormLeaveRepository) GetByRange(from, to time.Time) ([]models.LeaveRecord, error) {
	var records []models.LeaveRecord
	err := r.db.Where("date >= ? AND date <= ?", models.DateOnly(from), models.DateOnly(to)).
		Order("date, id").
		Find(&records).Error
	return records, err
}

func (r *GormLeaveRepository) GetByDate(date time.Time) ([]models.LeaveRecord, error) {
	return r.GetByRange(date, date)
}

func (r *GormLeaveRepository) Delete(id uint) error {
	return r.db.Delete(&models.LeaveRecord{}, id).Error
}
