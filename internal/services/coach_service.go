package services

import (
	"time"

	"github.com/mroshb/hitched/internal/coach"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/repositories"
	"github.com/mroshb/hitched/internal/safety"
	"github.com/mroshb/hitched/internal/security"
	"github.com/mroshb/hitched/pkg/errors"
	"github.com/mroshb/hitched/pkg/logger"
)

const (
	maxReasonRunes  = 120
	maxDetailsRunes = 1000
	maxFeelingRunes = 60
)

// CoachService serves the canned coaching payloads and records safety reports.
type CoachService struct {
	reports  repositories.SafetyReportStore
	pipeline *safety.Pipeline
	now      func() time.Time
}

func NewCoachService(reports repositories.SafetyReportStore, pipeline *safety.Pipeline) *CoachService {
	if pipeline == nil {
		pipeline = safety.NewPipeline(nil)
	}
	return &CoachService{reports: reports, pipeline: pipeline, now: time.Now}
}

func (s *CoachService) Coach(stage string) map[string]any {
	return s.apply(coach.Respond(stage, s.now()))
}

func (s *CoachService) DateGuidance() map[string]any {
	return s.apply(coach.DateGuidance(s.now()))
}

func (s *CoachService) RelationshipCoach(reflection, intent string) map[string]any {
	return s.apply(coach.RelationshipCoach(reflection, intent, s.now()))
}

func (s *CoachService) EmotionalSafety(feeling, intensity string) map[string]any {
	feeling = security.SanitizeText(feeling, maxFeelingRunes)
	return s.apply(coach.EmotionalSafety(feeling, intensity, s.now()))
}

func (s *CoachService) SecondDateGuidance() map[string]any {
	return s.apply(coach.SecondDateGuidance(s.now()))
}

// Report stores a safety concern and returns the receipt shown to the
// reporter. The stored record is never echoed back.
func (s *CoachService) Report(reporterID, matchID, reason, details, emotionalState string) (map[string]any, error) {
	reason = security.SanitizeText(reason, maxReasonRunes)
	if reason == "" {
		return nil, errors.New(errors.ErrCodeValidation, "Please tell us briefly what happened")
	}

	report := &models.SafetyReport{
		ReporterID:     reporterID,
		MatchID:        matchID,
		Reason:         reason,
		Details:        security.SanitizeText(details, maxDetailsRunes),
		EmotionalState: security.SanitizeText(emotionalState, maxFeelingRunes),
	}
	if err := s.reports.Create(report); err != nil {
		return nil, err
	}
	logger.Warn("safety report received", "report_id", report.ID, "match_id", matchID)

	return s.apply(coach.SafetyReceipt(s.now())), nil
}

func (s *CoachService) Reports() ([]models.SafetyReport, error) {
	return s.reports.ListAll()
}

func (s *CoachService) apply(p map[string]any) map[string]any {
	if out, ok := s.pipeline.Apply(p).(map[string]any); ok {
		return out
	}
	return p
}
