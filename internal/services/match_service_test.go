package services

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mroshb/hitched/internal/coach"
	"github.com/mroshb/hitched/internal/compatibility"
	"github.com/mroshb/hitched/internal/lifecycle"
	"github.com/mroshb/hitched/internal/metrics"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/repositories/memory"
	"github.com/mroshb/hitched/internal/safety"
	"github.com/mroshb/hitched/pkg/errors"
)

const testSecret = "test-secret-with-enough-length-123"

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	profiles *ProfileService
	matches  *MatchService
	store    *memory.MatchStore
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	profileStore := memory.NewProfileStore()
	matchStore := memory.NewMatchStore()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	ms := NewMatchService(MatchServiceOptions{
		Matches:   matchStore,
		Profiles:  profileStore,
		Tokens:    memory.NewTokenStore(),
		Pipeline:  safety.NewPipeline(nil),
		Metrics:   m,
		Secret:    testSecret,
		InviteTTL: time.Hour,
	})
	ms.now = func() time.Time { return fixedNow }

	return &fixture{
		profiles: NewProfileService(profileStore, nil, m, 0),
		matches:  ms,
		store:    matchStore,
		metrics:  m,
	}
}

func (f *fixture) seedBirmingham(t *testing.T) {
	t.Helper()
	_, err := f.profiles.Save("a", map[string]any{
		"gender": "male", "age": 30, "location": "Birmingham", "intent": "long_term",
		"values": "honesty, humor", "age_range_min": 25, "age_range_max": 40,
	})
	require.NoError(t, err)
	_, err = f.profiles.Save("b", map[string]any{
		"gender": "female", "age": 32, "location": "Birmingham", "intent": "long_term",
		"values": "honesty, travel", "age_range_min": 25, "age_range_max": 40,
	})
	require.NoError(t, err)
}

func TestMatchService_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedBirmingham(t)

	m, err := f.matches.Pair("a", "b")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusMatched, m.Status)
	assert.Equal(t, 45, m.PreScore)
	assert.Equal(t, models.StringList{"Same relationship intent", "Same location", "Shared values: honesty"}, m.PreReasons)

	inv, err := f.matches.Invite(m.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInviteSent, inv.Match.Status)
	assert.NotEmpty(t, inv.Token)
	assert.Equal(t, 45, inv.Payload["match_score"])
	assert.Equal(t, "a", inv.Match.InvitedBy)

	accepted, err := f.matches.Accept(inv.Token, "b")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInviteAccepted, accepted.Status)
	assert.Equal(t, models.StringList{"b"}, accepted.AcceptedBy)
	require.NotNil(t, accepted.AcceptedAt)

	_, err = f.matches.Accept(inv.Token, "b")
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized), "token must be single use")

	options, err := f.matches.ProposeDates(m.ID, "b")
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, "Birmingham café", options[0].Location)
	assert.Equal(t, "2026-03-12", options[0].Date)
	assert.Equal(t, DateTypeVirtual, options[2].Type)

	again, err := f.matches.ProposeDates(m.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, options, again)

	sched, err := f.matches.Schedule(m.ID, "a", "opt2")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusDateScheduled, sched.Match.Status)
	require.NotNil(t, sched.Match.DateDetails)
	assert.Equal(t, "17:00", sched.Match.DateDetails.Time)
	assert.Equal(t, coach.SafetyReminders, sched.SafetyReminders)

	fb, err := f.matches.RecordFeedback(m.ID, "a", true, "Lovely <b>evening</b>")
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationPause, fb.Recommendation)
	assert.Equal(t, "Lovely evening", fb.Match.Feedback["a"].Notes)

	_, err = f.matches.SecondDate(m.ID, "a")
	assert.True(t, errors.Is(err, errors.ErrCodeForbidden))

	fb, err = f.matches.RecordFeedback(m.ID, "b", true, "")
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationSecondDate, fb.Recommendation)

	second, err := f.matches.SecondDate(m.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusSecondDate, second.Match.Status)
	assert.Equal(t, "You both expressed interest in seeing each other again.", second.Payload["message"])

	closed, err := f.matches.Close(m.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusClosed, closed.Match.Status)
	require.NotNil(t, closed.Match.ClosedAt)
	assert.Equal(t, coach.ClosingMessage, closed.Payload["message"])

	_, err = f.matches.Close(m.ID, "a")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTransition))
}

func TestMatchService_CreateAndInviteNewPartner(t *testing.T) {
	f := newFixture(t)

	m, err := f.matches.Create("a")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCreated, m.Status)

	_, err = f.matches.Create("a")
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyExists))

	inv, err := f.matches.Invite(m.ID, "a")
	require.NoError(t, err)

	_, err = f.matches.Accept(inv.Token, "a")
	assert.True(t, errors.Is(err, errors.ErrCodeForbidden))

	accepted, err := f.matches.Accept(inv.Token, "c")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"a", "c"}, accepted.Participants)

	current, err := f.matches.Current("c")
	require.NoError(t, err)
	assert.Equal(t, m.ID, current.ID)
}

func TestMatchService_AcceptRejectsBadTokens(t *testing.T) {
	f := newFixture(t)

	_, err := f.matches.Accept("not-a-token", "b")
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	other := NewMatchService(MatchServiceOptions{
		Matches: f.store, Profiles: memory.NewProfileStore(), Tokens: memory.NewTokenStore(),
		Secret: "another-secret-that-is-long-enough", InviteTTL: time.Hour,
	})
	m, err := other.Create("x")
	require.NoError(t, err)
	inv, err := other.Invite(m.ID, "x")
	require.NoError(t, err)

	_, err = f.matches.Accept(inv.Token, "b")
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))
}

func TestMatchService_InvalidTransitionIsRejected(t *testing.T) {
	f := newFixture(t)
	f.seedBirmingham(t)

	m, err := f.matches.Pair("a", "b")
	require.NoError(t, err)

	_, err = f.matches.Schedule(m.ID, "a", "opt1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTransition))
	assert.Equal(t, "Invalid state transition: matched → date_scheduled", errors.MessageOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Transitions.WithLabelValues(models.MatchStatusDateScheduled, "rejected")))

	stored, err := f.store.FindByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusMatched, stored.Status)
}

func TestMatchService_NonParticipantForbidden(t *testing.T) {
	f := newFixture(t)
	f.seedBirmingham(t)

	m, err := f.matches.Pair("a", "b")
	require.NoError(t, err)

	_, err = f.matches.Invite(m.ID, "stranger")
	assert.True(t, errors.Is(err, errors.ErrCodeForbidden))
	_, err = f.matches.Evaluate(m.ID, "stranger")
	assert.True(t, errors.Is(err, errors.ErrCodeForbidden))
}

func TestMatchService_PauseBlocksTransitions(t *testing.T) {
	f := newFixture(t)
	f.seedBirmingham(t)

	m, err := f.matches.Pair("a", "b")
	require.NoError(t, err)

	paused, err := f.matches.Pause(m.ID, "b")
	require.NoError(t, err)
	assert.True(t, paused.Match.Paused)
	assert.Equal(t, models.MatchStatusMatched, paused.Match.Status)
	assert.Equal(t, lifecycle.StagePaused, paused.Payload["stage"])

	_, err = f.matches.Invite(m.ID, "a")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTransition))
	assert.Equal(t, coach.PauseMessage, errors.MessageOf(err))

	stage, err := f.matches.Flow("a")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StagePaused, stage.Stage)

	resumed, err := f.matches.Resume(m.ID, "a")
	require.NoError(t, err)
	assert.False(t, resumed.Match.Paused)
	assert.Nil(t, resumed.Match.PausedAt)

	_, err = f.matches.Invite(m.ID, "a")
	assert.NoError(t, err)
}

func TestMatchService_Cancel(t *testing.T) {
	f := newFixture(t)
	f.seedBirmingham(t)

	m, err := f.matches.Pair("a", "b")
	require.NoError(t, err)
	require.NoError(t, f.matches.Cancel(m.ID, "b"))

	_, err = f.store.FindByID(m.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	m, err = f.matches.Pair("a", "b")
	require.NoError(t, err)
	inv, err := f.matches.Invite(m.ID, "a")
	require.NoError(t, err)
	_, err = f.matches.Accept(inv.Token, "b")
	require.NoError(t, err)
	_, err = f.matches.Schedule(m.ID, "b", "opt1")
	require.NoError(t, err)

	err = f.matches.Cancel(m.ID, "a")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTransition))
	assert.Zero(t, f.matches.locks.size(), "match locks are released after use")
}

func TestKeyedMutex_SerializesAndReleases(t *testing.T) {
	var (
		k       keyedMutex
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("m1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, k.size())

	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.size())
	unlockA()
	unlockB()
	assert.Zero(t, k.size())
}

func TestMatchService_EvaluateAppendsHistory(t *testing.T) {
	f := newFixture(t)
	f.seedBirmingham(t)

	m, err := f.matches.Pair("a", "b")
	require.NoError(t, err)

	first, err := f.matches.Evaluate(m.ID, "a")
	require.NoError(t, err)
	assert.True(t, first.Compatible)
	assert.Equal(t, 75, first.Score)
	assert.Equal(t, compatibility.GradeStrong, first.Grade)
	assert.Equal(t, 1, first.HistoryCount)
	assert.Equal(t, m.ID, first.MatchID)

	second, err := f.matches.Evaluate(m.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, 2, second.HistoryCount)

	stored, err := f.store.FindByID(m.ID)
	require.NoError(t, err)
	require.Len(t, stored.History, 2)
	assert.Equal(t, fixedNow, stored.History[0].EvaluatedAt)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Evaluations.WithLabelValues(compatibility.GradeStrong)))
}

func TestMatchService_EvaluateNeedsBothProfiles(t *testing.T) {
	f := newFixture(t)

	m, err := f.matches.Create("a")
	require.NoError(t, err)

	_, err = f.matches.Evaluate(m.ID, "a")
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	inv, err := f.matches.Invite(m.ID, "a")
	require.NoError(t, err)
	_, err = f.matches.Accept(inv.Token, "b")
	require.NoError(t, err)

	_, err = f.matches.Evaluate(m.ID, "a")
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestMatchService_Suggest(t *testing.T) {
	f := newFixture(t)
	f.seedBirmingham(t)

	_, err := f.profiles.Save("c", map[string]any{"gender": "female", "location": "York", "intent": "friendship"})
	require.NoError(t, err)
	_, err = f.profiles.Save("d", map[string]any{
		"gender": "female", "seeking_gender": "female", "location": "Birmingham", "intent": "long_term",
	})
	require.NoError(t, err)

	got, err := f.matches.Suggest("a", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].UserID)
	assert.Equal(t, 45, got[0].Score)
	assert.Equal(t, compatibility.VerdictMedium, got[0].Verdict)

	_, err = f.matches.Suggest("nobody", 0)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestRecommend(t *testing.T) {
	yes := models.PostDateFeedback{Interested: true}
	no := models.PostDateFeedback{Interested: false}

	tests := []struct {
		name     string
		feedback models.FeedbackSet
		want     string
	}{
		{"no feedback", nil, models.RecommendationPause},
		{"one yes", models.FeedbackSet{"a": yes}, models.RecommendationPause},
		{"one no", models.FeedbackSet{"a": no}, models.RecommendationPause},
		{"mixed", models.FeedbackSet{"a": yes, "b": no}, models.RecommendationPause},
		{"both yes", models.FeedbackSet{"a": yes, "b": yes}, models.RecommendationSecondDate},
		{"both no", models.FeedbackSet{"a": no, "b": no}, models.RecommendationClose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommend(tt.feedback); got != tt.want {
				t.Errorf("Recommend() = %v, want %v", got, tt.want)
			}
		})
	}
}
