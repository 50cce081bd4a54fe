package repositories

import (
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/pkg/errors"
)

// sqlLog keeps every statement the mock accepted.
type sqlLog struct {
	mu    sync.Mutex
	stmts []string
}

func (l *sqlLog) match(expectedSQL, actualSQL string) error {
	if err := sqlmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stmts = append(l.stmts, actualSQL)
	return nil
}

func (l *sqlLog) last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.stmts) == 0 {
		return ""
	}
	return l.stmts[len(l.stmts)-1]
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sqlLog) {
	t.Helper()

	log := &sqlLog{}
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(log.match)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock, log
}

func TestMatchRepository_UpdateLeavesHistoryAlone(t *testing.T) {
	db, mock, log := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectExec(`UPDATE "matches" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(&models.Match{
		ID:           "m1",
		Participants: models.StringList{"a", "b"},
		Status:       models.MatchStatusMatched,
		History:      models.Snapshots{{Score: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	stmt := log.last()
	assert.Contains(t, stmt, `"status"`)
	assert.Contains(t, stmt, `"paused"`, "zero values are written too")
	assert.NotContains(t, stmt, `"history"`)
	assert.NotContains(t, stmt, `"created_at"`)
}

func TestMatchRepository_UpdateMissingRow(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectExec(`UPDATE "matches" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(&models.Match{ID: "gone", Status: models.MatchStatusMatched})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_AppendEvaluationLocksRow(t *testing.T) {
	db, mock, log := newMockDB(t)
	repo := NewMatchRepository(db)

	rows := sqlmock.NewRows([]string{"id", "history"}).
		AddRow("m1", `[{"evaluated_at":"2026-03-10T12:00:00Z","score":75,"grade":"strong","compatible":true,"notes":"ok"}]`)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "matches" .*FOR UPDATE`).WillReturnRows(rows)
	mock.ExpectExec(`UPDATE "matches" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	count, err := repo.AppendEvaluation("m1", models.CompatibilitySnapshot{
		EvaluatedAt: time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC),
		Score:       80,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())

	stmt := log.last()
	assert.Contains(t, stmt, `"history"`)
	assert.NotContains(t, stmt, `"status"`)
}

func TestMatchRepository_AppendEvaluationMissingMatch(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "matches"`).WillReturnRows(sqlmock.NewRows([]string{"id", "history"}))
	mock.ExpectRollback()

	_, err := repo.AppendEvaluation("gone", models.CompatibilitySnapshot{Score: 50})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
