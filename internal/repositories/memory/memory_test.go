package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/repositories"
	"github.com/mroshb/hitched/pkg/errors"
)

var (
	_ repositories.UserStore         = (*UserStore)(nil)
	_ repositories.ProfileStore      = (*ProfileStore)(nil)
	_ repositories.MatchStore        = (*MatchStore)(nil)
	_ repositories.TokenStore        = (*TokenStore)(nil)
	_ repositories.SafetyReportStore = (*SafetyReportStore)(nil)
)

func TestUserStore_FindOrCreateByTelegram(t *testing.T) {
	s := NewUserStore()

	u, err := s.FindOrCreateByTelegram(models.User{TelegramID: 10, FirstName: "Sam"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	again, err := s.FindOrCreateByTelegram(models.User{TelegramID: 10, FirstName: "Samuel"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Samuel", again.FirstName)

	byTg, err := s.FindByTelegramID(10)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byTg.ID)

	_, err = s.FindByID("missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	_, err = s.FindOrCreateByTelegram(models.User{})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestProfileStore_CopiesValues(t *testing.T) {
	s := NewProfileStore()
	p := &models.Profile{UserID: "u1", Gender: models.GenderFemale, Values: models.StringList{"honesty"}, Age: models.IntPtr(30)}
	require.NoError(t, s.Save(p))

	p.Values[0] = "changed"
	*p.Age = 99

	got, err := s.FindByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"honesty"}, got.Values)
	assert.Equal(t, 30, *got.Age)

	females, err := s.ListByGender(models.GenderFemale)
	require.NoError(t, err)
	assert.Len(t, females, 1)
	males, err := s.ListByGender(models.GenderMale)
	require.NoError(t, err)
	assert.Empty(t, males)
}

func TestMatchStore_UpdateKeepsHistory(t *testing.T) {
	s := NewMatchStore()
	m := &models.Match{Participants: models.StringList{"a", "b"}, Status: models.MatchStatusMatched}
	require.NoError(t, s.Create(m))

	stale, err := s.FindByID(m.ID)
	require.NoError(t, err)

	n, err := s.AppendEvaluation(m.ID, models.CompatibilitySnapshot{Score: 75})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stale.Status = models.MatchStatusInviteSent
	require.NoError(t, s.Update(stale))

	got, err := s.FindByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInviteSent, got.Status)
	require.Len(t, got.History, 1)
	assert.Equal(t, 75, got.History[0].Score)
}

func TestMatchStore_ConcurrentAppendsAllLand(t *testing.T) {
	s := NewMatchStore()
	m := &models.Match{Participants: models.StringList{"a", "b"}, Status: models.MatchStatusMatched}
	require.NoError(t, s.Create(m))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := s.AppendEvaluation(m.ID, models.CompatibilitySnapshot{Score: score})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.FindByID(m.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, writers)
}

func TestMatchStore_ListAndDelete(t *testing.T) {
	s := NewMatchStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := &models.Match{ID: "m1", Participants: models.StringList{"a", "b"}, CreatedAt: base}
	newer := &models.Match{ID: "m2", Participants: models.StringList{"a", "c"}, CreatedAt: base.Add(time.Hour)}
	other := &models.Match{ID: "m3", Participants: models.StringList{"c", "d"}, CreatedAt: base.Add(2 * time.Hour)}
	for _, m := range []*models.Match{older, newer, other} {
		require.NoError(t, s.Create(m))
	}
	assert.True(t, errors.Is(s.Create(&models.Match{ID: "m1"}), errors.ErrCodeAlreadyExists))

	list, err := s.ListForUser("a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m2", list[0].ID)

	latest, err := s.LatestForUser("a")
	require.NoError(t, err)
	assert.Equal(t, "m2", latest.ID)

	all, err := s.ListAll()
	require.NoError(t, err)
	assert.Equal(t, "m1", all[0].ID)
	assert.Len(t, all, 3)

	require.NoError(t, s.Delete("m2"))
	assert.True(t, errors.Is(s.Delete("m2"), errors.ErrCodeNotFound))
	_, err = s.LatestForUser("zzz")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.True(t, errors.Is(s.Update(&models.Match{ID: "m2"}), errors.ErrCodeNotFound))
}

func TestTokenAndReportStores(t *testing.T) {
	tokens := NewTokenStore()
	revoked, err := tokens.IsRevoked("jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, tokens.Revoke("jti", time.Now()))
	require.NoError(t, tokens.Revoke("jti", time.Now()))
	revoked, err = tokens.IsRevoked("jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	reports := NewSafetyReportStore()
	first := &models.SafetyReport{ReporterID: "a", Reason: "rude"}
	second := &models.SafetyReport{ReporterID: "b", Reason: "late"}
	require.NoError(t, reports.Create(first))
	require.NoError(t, reports.Create(second))
	assert.Equal(t, uint(1), first.ID)

	list, err := reports.ListAll()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "late", list[0].Reason)
}
