package storage

import (
	"errors"

	"gorm.io/gorm"

	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
)

// CarFilter narrows a fleet listing.
type CarFilter struct {
	Status string
	Make   string
	Year   int
}

// CarRepository is CRUD over the fleet registry.
type CarRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) Create(car *entity.Car) error {
	if err := r.db.Create(car).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, err, "save car")
	}
	return nil
}

func (r *CarRepository) List(skip, limit int, filter CarFilter) ([]entity.Car, int64, error) {
	q := r.db.Model(&entity.Car{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Make != "" {
		q = q.Where("make LIKE ?", "%"+filter.Make+"%")
	}
	if filter.Year != 0 {
		q = q.Where("year = ?", filter.Year)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStorage, err, "count cars")
	}

	var cars []entity.Car
	if err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&cars).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStorage, err, "list cars")
	}
	return cars, total, nil
}

func (r *CarRepository) Get(id uint) (*entity.Car, error) {
	var car entity.Car
	err := r.db.First(&car, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "car %d not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, err, "fetch car %d", id)
	}
	return &car, nil
}

func (r *CarRepository) Update(car *entity.Car) error {
	if err := r.db.Save(car).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, err, "update car %d", car.ID)
	}
	return nil
}

func (r *CarRepository) Delete(id uint) error {
	res := r.db.Delete(&entity.Car{}, id)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindStorage, res.Error, "delete car %d", id)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "car %d not found", id)
	}
	return nil
}
