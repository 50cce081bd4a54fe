package repositories

import (
	stderrors "errors"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/pkg/errors"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Save upserts on the user id primary key.
func (r *ProfileRepository) Save(p *models.Profile) error {
	if err := r.db.Save(p).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save profile")
	}
	return nil
}

func (r *ProfileRepository) FindByUserID(userID string) (*models.Profile, error) {
	var p models.Profile
	result := r.db.Where("user_id = ?", userID).First(&p)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "profile not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get profile")
	}
	return &p, nil
}

// ListByGender returns every profile of the given gender, most recently updated first.
func (r *ProfileRepository) ListByGender(gender string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.Where("gender = ?", gender).
		Order("updated_at DESC").
		Find(&profiles).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list profiles")
	}
	return profiles, nil
}
