package repositories

import (
	"time"

	"github.com/mroshb/hitched/internal/models"
)

// Store interfaces consumed by the services. The gorm repositories in this
// package and the memory package both implement them. Not-found conditions
// are reported as AppError with ErrCodeNotFound.

type UserStore interface {
	// FindOrCreateByTelegram returns the user with u.TelegramID, creating it
	// from u when missing and refreshing the display fields otherwise.
	FindOrCreateByTelegram(u models.User) (*models.User, error)
	FindByID(id string) (*models.User, error)
	FindByTelegramID(telegramID int64) (*models.User, error)
}

type ProfileStore interface {
	// Save inserts or replaces the profile of p.UserID.
	Save(p *models.Profile) error
	FindByUserID(userID string) (*models.Profile, error)
	ListByGender(gender string) ([]models.Profile, error)
}

type MatchStore interface {
	Create(m *models.Match) error
	FindByID(id string) (*models.Match, error)
	// Update writes every column except the compatibility history, which only
	// AppendEvaluation may change.
	Update(m *models.Match) error
	Delete(id string) error
	ListForUser(userID string) ([]models.Match, error)
	LatestForUser(userID string) (*models.Match, error)
	ListAll() ([]models.Match, error)
	// AppendEvaluation adds snap to the history atomically and returns the new length.
	AppendEvaluation(matchID string, snap models.CompatibilitySnapshot) (int, error)
}

type TokenStore interface {
	Revoke(tokenID string, at time.Time) error
	IsRevoked(tokenID string) (bool, error)
}

type SafetyReportStore interface {
	Create(r *models.SafetyReport) error
	ListAll() ([]models.SafetyReport, error)
}
