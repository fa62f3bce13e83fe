package repository

import (
	"errors"
	"field-sales-bot/internal/models"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrVisitNotFound = errors.New("visit not found")
	// ErrSlotConflict is returned when the unique (staff, date, slot) index
	// rejects an insert made by a concurrent booking.
	ErrSlotConflict = errors.New("slot already booked")
)

// Reservation is what a BookFunc decided: the visit to insert and, when
// LeadStatus is set, the status its lead moves to in the same transaction.
type Reservation struct {
	Visit       *models.Visit
	LeadStatus  string
	ContactedAt time.Time
}

// BookFunc decides, from the staff member's visits on the day, what to
// store. Returning an error aborts the transaction.
type BookFunc func(dayVisits []models.Visit) (*Reservation, error)

type VisitRepository interface {
	CreateIfFree(staffID uint, date time.Time, book BookFunc) (*models.Visit, error)
	Update(visit *models.Visit) error
	GetByID(id string) (*models.Visit, error)
	GetByStaffAndRange(staffID uint, from, to time.Time) ([]models.Visit, error)
	GetByStaffID(staffID uint) ([]models.Visit, error)
	GetByLeadID(leadID uint) ([]models.Visit, error)
	GetAll() ([]models.Visit, error)
}

type GormVisitRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormVisitRepository(db *gorm.DB, logger *logrus.Logger) (*GormVisitRepository, error) {
	if err := db.AutoMigrate(&models.Visit{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate visits table")
		return nil, err
	}

	logger.Debug("Visit repository initialized")

	return &GormVisitRepository{
		db:     db,
		logger: logger,
	}, nil
}

// CreateIfFree loads the staff member's visits for date, lets book decide on
// that fresh snapshot, inserts the visit and moves the lead, all in one
// transaction.
func (r *GormVisitRepository) CreateIfFree(staffID uint, date time.Time, book BookFunc) (*models.Visit, error) {
	date = models.DateOnly(date)
	var created *models.Visit

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var dayVisits []models.Visit
		if err := tx.Where("staff_id = ? AND visit_date = ?", staffID, date).
			Find(&dayVisits).Error; err != nil {
			return err
		}

		res, err := book(dayVisits)
		if err != nil {
			return err
		}
		visit := res.Visit
		if visit == nil || !visit.IsValid() {
			return errors.New("invalid visit data")
		}
		visit.VisitDate = models.DateOnly(visit.VisitDate)

		if err := tx.Create(visit).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotConflict
			}
			return fmt.Errorf("insert visit: %w", err)
		}

		if res.LeadStatus != "" {
			result := tx.Model(&models.Lead{}).
				Where("id = ?", visit.LeadID).
				Updates(map[string]interface{}{
					"status":       res.LeadStatus,
					"last_contact": res.ContactedAt,
				})
			if result.Error != nil {
				return fmt.Errorf("update lead: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrLeadNotFound
			}
		}

		created = visit
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"visit_id": created.ID,
		"staff_id": created.StaffID,
		"date":     created.VisitDate.Format(models.DateLayout),
		"slot":     created.TimeSlot,
	}).Info("Visit booked")

	return created, nil
}

// Update writes a status transition. The row must still be Scheduled, so a
// caller holding a stale copy cannot overwrite a terminal status.
func (r *GormVisitRepository) Update(visit *models.Visit) error {
	result := r.db.Model(&models.Visit{}).
		Where("id = ? AND status = ?", visit.ID, models.VisitStatusScheduled).
		Updates(map[string]interface{}{
			"status":    visit.Status,
			"gps_proof": visit.GPSProof,
		})
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update visit")
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	current, err := r.GetByID(visit.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrVisitNotFound
	}
	return fmt.Errorf("%w: status is %s", models.ErrVisitNotScheduled, current.Status)
}

func (r *GormVisitRepository) GetByID(id string) (*models.Visit, error) {
	var visit models.Visit
	result := r.db.Where("id = ?", id).First(&visit)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &visit, nil
}

// GetByStaffAndRange returns visits of every status with from <= date <= to.
func (r *GormVisitRepository) GetByStaffAndRange(staffID uint, from, to time.Time) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.Where("staff_id = ? AND visit_date >= ? AND visit_date <= ?",
		staffID, models.DateOnly(from), models.DateOnly(to)).
		Order("visit_date, created_at").
		Find(&visits).Error
	return visits, err
}

func (r *GormVisitRepository) GetByStaffID(staffID uint) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.Where("staff_id = ?", staffID).
		Order("visit_date, created_at").
		Find(&visits).Error
	return visits, err
}

func (r *GormVisitRepository) GetByLeadID(leadID uint) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.Where("lead_id = ?", leadID).
		Order("visit_date, created_at").
		Find(&visits).Error
	return visits, err
}

func (r *GormVisitRepository) GetAll() ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.Order("visit_date, created_at").Find(&visits).Error
	return visits, err
}
