package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mroshb/hitched/internal/coach"
	"github.com/mroshb/hitched/internal/repositories/memory"
	"github.com/mroshb/hitched/pkg/errors"
)

func TestCoachService_ReportIsStored(t *testing.T) {
	store := memory.NewSafetyReportStore()
	s := NewCoachService(store, nil)
	s.now = func() time.Time { return fixedNow }

	receipt, err := s.Report("u1", "m1", "  Made me uncomfortable <i>twice</i> ", "details", "shaken")
	require.NoError(t, err)
	assert.Equal(t, "received", receipt["status"])
	assert.NotContains(t, receipt, "reason")

	reports, err := s.Reports()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Made me uncomfortable twice", reports[0].Reason)
	assert.Equal(t, "m1", reports[0].MatchID)
	assert.Equal(t, "shaken", reports[0].EmotionalState)

	_, err = s.Report("u1", "", "   ", "", "")
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestCoachService_PayloadsMatchCoach(t *testing.T) {
	s := NewCoachService(memory.NewSafetyReportStore(), nil)
	s.now = func() time.Time { return fixedNow }

	assert.Equal(t, coach.Respond(coach.StageAfterDate, fixedNow), s.Coach(coach.StageAfterDate))
	assert.Equal(t, coach.DateGuidance(fixedNow), s.DateGuidance())
	assert.Equal(t, coach.SecondDateGuidance(fixedNow), s.SecondDateGuidance())
	assert.Equal(t, "nervous", s.EmotionalSafety("<b>nervous</b>", "")["feeling"])
}
