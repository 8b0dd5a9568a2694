package storage

import (
	"errors"

	"gorm.io/gorm"

	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
)

// InspectionRepository is CRUD over write-once inspection rows.
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// Create inserts one inspection row.
func (r *InspectionRepository) Create(insp *entity.Inspection) error {
	if err := r.db.Create(insp).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, err, "save inspection %s", insp.ID)
	}
	return nil
}

// List returns inspections ordered most recent first, plus the total count.
func (r *InspectionRepository) List(skip, limit int) ([]entity.Inspection, int64, error) {
	var items []entity.Inspection
	err := r.db.Order("created_at DESC").Offset(skip).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStorage, err, "list inspections")
	}

	var total int64
	if err := r.db.Model(&entity.Inspection{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStorage, err, "count inspections")
	}
	return items, total, nil
}

// Get fetches one inspection by id.
func (r *InspectionRepository) Get(id string) (*entity.Inspection, error) {
	var insp entity.Inspection
	err := r.db.First(&insp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "inspection %s not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "fetch inspection %s", id)
	}
	return &insp, nil
}
