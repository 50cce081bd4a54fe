package repositories

import (
	stderrors "errors"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindOrCreateByTelegram creates the user on first contact and keeps the
// Telegram display fields fresh afterwards.
func (r *UserRepository) FindOrCreateByTelegram(u models.User) (*models.User, error) {
	var user models.User
	result := r.db.
		Where(models.User{TelegramID: u.TelegramID}).
		Assign(models.User{Username: u.Username, FirstName: u.FirstName}).
		FirstOrCreate(&user)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to save user")
	}
	return &user, nil
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	result := r.db.Where("id = ?", id).First(&user)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}

	return &user, nil
}

// FindByTelegramID retrieves a user by Telegram ID
func (r *UserRepository) FindByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	result := r.db.Where("telegram_id = ?", telegramID).First(&user)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}

	return &user, nil
}
