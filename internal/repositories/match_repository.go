package repositories

import (
	stderrors "errors"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(m *models.Match) error {
	if err := r.db.Create(m).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create match")
	}
	return nil
}

func (r *MatchRepository) FindByID(id string) (*models.Match, error) {
	var m models.Match
	result := r.db.Where("id = ?", id).First(&m)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "match not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get match")
	}
	return &m, nil
}

// Update writes all columns, zero values included, except the history.
func (r *MatchRepository) Update(m *models.Match) error {
	result := r.db.Model(m).
		Select("*").
		Omit("ID", "History", "CreatedAt").
		Updates(m)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update match")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "match not found")
	}
	return nil
}

func (r *MatchRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Match{})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to delete match")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "match not found")
	}
	return nil
}

// participantPattern matches a user id inside the JSON encoded participant list.
func participantPattern(userID string) string {
	return `%"` + userID + `"%`
}

func (r *MatchRepository) ListForUser(userID string) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.Where("participants LIKE ?", participantPattern(userID)).
		Order("created_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list matches")
	}
	return matches, nil
}

func (r *MatchRepository) LatestForUser(userID string) (*models.Match, error) {
	var m models.Match
	result := r.db.Where("participants LIKE ?", participantPattern(userID)).
		Order("created_at DESC").
		First(&m)

	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "match not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get match")
	}
	return &m, nil
}

func (r *MatchRepository) ListAll() ([]models.Match, error) {
	var matches []models.Match
	if err := r.db.Order("created_at ASC").Find(&matches).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list matches")
	}
	return matches, nil
}

// AppendEvaluation locks the match row so concurrent evaluations append in turn.
func (r *MatchRepository) AppendEvaluation(matchID string, snap models.CompatibilitySnapshot) (int, error) {
	count := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var m models.Match
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "history").
			Where("id = ?", matchID).
			First(&m)
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return errors.New(errors.ErrCodeNotFound, "match not found")
		}
		if result.Error != nil {
			return result.Error
		}

		m.History = append(m.History, snap)
		count = len(m.History)
		return tx.Model(&models.Match{}).
			Where("id = ?", matchID).
			Update("history", m.History).Error
	})
	if err != nil {
		if errors.CodeOf(err) != "" {
			return 0, err
		}
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to append evaluation")
	}
	return count, nil
}
