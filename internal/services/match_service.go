package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/mroshb/hitched/internal/coach"
	"github.com/mroshb/hitched/internal/compatibility"
	"github.com/mroshb/hitched/internal/lifecycle"
	"github.com/mroshb/hitched/internal/metrics"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/repositories"
	"github.com/mroshb/hitched/internal/safety"
	"github.com/mroshb/hitched/internal/security"
	"github.com/mroshb/hitched/pkg/errors"
	"github.com/mroshb/hitched/pkg/logger"
	"github.com/mroshb/hitched/pkg/utils"
)

const (
	maxParticipants   = 2
	maxFeedbackRunes  = 500
	defaultSuggestMax = 5

	DateTypePhysical = "physical"
	DateTypeVirtual  = "virtual"
)

type MatchService struct {
	matches   repositories.MatchStore
	profiles  repositories.ProfileStore
	tokens    repositories.TokenStore
	pipeline  *safety.Pipeline
	metrics   *metrics.Metrics
	secret    string
	inviteTTL time.Duration
	locks     keyedMutex
	now       func() time.Time
}

type MatchServiceOptions struct {
	Matches   repositories.MatchStore
	Profiles  repositories.ProfileStore
	Tokens    repositories.TokenStore
	Pipeline  *safety.Pipeline
	Metrics   *metrics.Metrics
	Secret    string
	InviteTTL time.Duration
}

func NewMatchService(opts MatchServiceOptions) *MatchService {
	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = safety.NewPipeline(nil)
	}
	return &MatchService{
		matches:   opts.Matches,
		profiles:  opts.Profiles,
		tokens:    opts.Tokens,
		pipeline:  pipeline,
		metrics:   opts.Metrics,
		secret:    opts.Secret,
		inviteTTL: opts.InviteTTL,
		now:       time.Now,
	}
}

// InviteResult carries the signed token the inviter shares with the invitee.
type InviteResult struct {
	Match     *models.Match
	Token     string
	ExpiresAt time.Time
	Payload   map[string]any
}

type ScheduleResult struct {
	Match           *models.Match
	SafetyReminders []string
}

type FeedbackResult struct {
	Match          *models.Match
	Recommendation string
	Message        string
}

type TransitionResult struct {
	Match   *models.Match
	Payload map[string]any
}

// Evaluation is a compatibility result recorded on a match.
type Evaluation struct {
	compatibility.Result
	MatchID      string `json:"match_id"`
	Explanation  string `json:"explanation"`
	HistoryCount int    `json:"history_count"`
}

// Create opens a match owned by userID. The partner joins by accepting an invite.
func (s *MatchService) Create(userID string) (*models.Match, error) {
	if err := s.requireNoOpenMatch(userID); err != nil {
		return nil, err
	}
	m := &models.Match{
		Participants: models.StringList{userID},
		Status:       models.MatchStatusCreated,
	}
	if err := s.matches.Create(m); err != nil {
		return nil, err
	}
	logger.Info("match created", "match_id", m.ID, "user_id", userID)
	return m, nil
}

// Pair matches two users directly and records their coarse pre-match score.
func (s *MatchService) Pair(userID, partnerID string) (*models.Match, error) {
	if userID == partnerID {
		return nil, errors.New(errors.ErrCodeValidation, "You cannot be matched with yourself")
	}
	self, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}
	other, err := s.profiles.FindByUserID(partnerID)
	if err != nil {
		return nil, err
	}
	if err := s.requireNoOpenMatch(userID); err != nil {
		return nil, err
	}
	if err := s.requireNoOpenMatch(partnerID); err != nil {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "This person is already in a connection")
	}

	pre := compatibility.ScoreMatch(self.Traits(), other.Traits())
	m := &models.Match{
		Participants: models.StringList{userID, partnerID},
		Status:       models.MatchStatusMatched,
		PreScore:     pre.Score,
		PreReasons:   s.pipeline.Strings(pre.Reasons),
	}
	if err := s.matches.Create(m); err != nil {
		return nil, err
	}
	logger.Info("match paired", "match_id", m.ID, "score", pre.Score, "verdict", pre.Verdict)
	return m, nil
}

// Suggest ranks profiles of the gender userID is seeking. At most limit
// candidates are returned; limit <= 0 uses the default.
func (s *MatchService) Suggest(userID string, limit int) ([]compatibility.Candidate, error) {
	self, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}
	if self.SeekingGender == "" {
		return nil, errors.New(errors.ErrCodeValidation, "Please set your gender first")
	}

	pool, err := s.profiles.ListByGender(self.SeekingGender)
	if err != nil {
		return nil, err
	}
	mutual := pool[:0]
	for _, p := range pool {
		if p.SeekingGender == "" || p.SeekingGender == self.Gender {
			mutual = append(mutual, p)
		}
	}

	if limit <= 0 {
		limit = defaultSuggestMax
	}
	ranked := compatibility.Rank(*self, mutual)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Reasons = s.pipeline.Strings(ranked[i].Reasons)
	}
	return ranked, nil
}

// Invite moves the match to invite_sent and signs a one-time invite token.
func (s *MatchService) Invite(matchID, userID string) (*InviteResult, error) {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(m, models.MatchStatusInviteSent); err != nil {
		return nil, err
	}

	token, claims, err := security.GenerateInviteToken(m.ID, userID, s.secret, s.inviteTTL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "Could not create the invite")
	}

	now := s.now().UTC()
	m.InvitedBy = userID
	m.InvitedAt = &now
	if err := s.matches.Update(m); err != nil {
		return nil, err
	}

	reasons := make([]any, 0, len(m.PreReasons))
	for _, r := range m.PreReasons {
		reasons = append(reasons, r)
	}
	return &InviteResult{
		Match:     m,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Payload: s.payload(map[string]any{
			"message":     coach.InviteMessage,
			"match_score": m.PreScore,
			"reasons":     reasons,
		}),
	}, nil
}

// Accept redeems an invite token. The invitee joins the match if needed and
// the token cannot be used again.
func (s *MatchService) Accept(token, userID string) (*models.Match, error) {
	claims, err := security.ValidateInviteToken(token, s.secret)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "This invite is invalid or has expired")
	}

	revoked, err := s.tokens.IsRevoked(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errors.New(errors.ErrCodeUnauthorized, "This invite has already been used")
	}
	if claims.InviterID == userID {
		return nil, errors.New(errors.ErrCodeForbidden, "You cannot accept your own invite")
	}

	unlock := s.locks.Lock(claims.MatchID)
	defer unlock()

	m, err := s.matches.FindByID(claims.MatchID)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(userID) {
		if len(m.Participants) >= maxParticipants {
			return nil, errors.New(errors.ErrCodeForbidden, "This connection already has two people")
		}
		if err := s.requireNoOpenMatch(userID); err != nil {
			return nil, err
		}
	}
	if err := s.transition(m, models.MatchStatusInviteAccepted); err != nil {
		return nil, err
	}

	if !m.HasParticipant(userID) {
		m.Participants = append(m.Participants, userID)
	}
	if !m.AcceptedBy.Contains(userID) {
		m.AcceptedBy = append(m.AcceptedBy, userID)
	}
	now := s.now().UTC()
	m.AcceptedAt = &now
	if err := s.matches.Update(m); err != nil {
		return nil, err
	}
	if err := s.tokens.Revoke(claims.ID, now); err != nil {
		logger.Error("failed to revoke invite token", "match_id", m.ID, "error", err)
	}

	logger.Info("invite accepted", "match_id", m.ID, "user_id", userID)
	return m, nil
}

// ProposeDates lists the first-date options for an accepted invite. Options
// are derived from the acceptance time so repeated calls agree.
func (s *MatchService) ProposeDates(matchID, userID string) ([]models.DateOption, error) {
	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MatchStatusInviteAccepted {
		return nil, errors.New(errors.ErrCodeValidation, "Date options are available once the invite is accepted")
	}
	return s.dateOptions(m), nil
}

func (s *MatchService) dateOptions(m *models.Match) []models.DateOption {
	base := s.now()
	if m.AcceptedAt != nil {
		base = *m.AcceptedAt
	}
	day := func(n int) string { return base.UTC().AddDate(0, 0, n).Format("2006-01-02") }

	city := "City centre"
	if len(m.Participants) > 0 {
		if p, err := s.profiles.FindByUserID(m.Participants[0]); err == nil && p.Location != "" {
			city = utils.UpperFirst(p.Location)
		}
	}

	options := []models.DateOption{
		{OptionID: "opt1", Type: DateTypePhysical, Location: city + " café", Date: day(2), Time: "18:30"},
		{OptionID: "opt2", Type: DateTypePhysical, Location: city + " walk & coffee", Date: day(3), Time: "17:00"},
		{OptionID: "opt3", Type: DateTypeVirtual, Location: "Video call", Date: day(4), Time: "19:00"},
	}
	if out, ok := s.pipeline.Apply(options).([]models.DateOption); ok {
		return out
	}
	return options
}

// Schedule confirms one of the proposed options by its id.
func (s *MatchService) Schedule(matchID, userID, optionID string) (*ScheduleResult, error) {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}

	var chosen *models.DateOption
	if m.Status == models.MatchStatusInviteAccepted {
		for _, opt := range s.dateOptions(m) {
			if opt.OptionID == optionID {
				opt := opt
				chosen = &opt
				break
			}
		}
		if chosen == nil {
			return nil, errors.New(errors.ErrCodeValidation, fmt.Sprintf("Unknown date option %q", optionID))
		}
	}
	if err := s.transition(m, models.MatchStatusDateScheduled); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m.DateDetails = chosen
	m.ScheduledAt = &now
	if err := s.matches.Update(m); err != nil {
		return nil, err
	}
	return &ScheduleResult{Match: m, SafetyReminders: s.pipeline.Strings(coach.SafetyReminders)}, nil
}

// RecordFeedback stores one participant's post-date reflection and derives the
// recommendation: second_date when both are interested, close when both
// answered and neither is, pause otherwise.
func (s *MatchService) RecordFeedback(matchID, userID string, interested bool, notes string) (*FeedbackResult, error) {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MatchStatusDateScheduled {
		return nil, errors.New(errors.ErrCodeValidation, "Feedback opens after your date is scheduled")
	}

	if m.Feedback == nil {
		m.Feedback = models.FeedbackSet{}
	}
	m.Feedback[userID] = models.PostDateFeedback{
		Interested:  interested,
		Notes:       security.SanitizeText(notes, maxFeedbackRunes),
		SubmittedAt: s.now().UTC(),
	}
	m.Recommendation = Recommend(m.Feedback)
	if err := s.matches.Update(m); err != nil {
		return nil, err
	}

	return &FeedbackResult{
		Match:          m,
		Recommendation: m.Recommendation,
		Message:        s.pipeline.Text("Thank you for reflecting. There is no pressure either way."),
	}, nil
}

// Recommend derives the post-date recommendation from the feedback so far.
func Recommend(feedback models.FeedbackSet) string {
	positives := 0
	for _, f := range feedback {
		if f.Interested {
			positives++
		}
	}
	switch {
	case positives == maxParticipants:
		return models.RecommendationSecondDate
	case positives == 0 && len(feedback) == maxParticipants:
		return models.RecommendationClose
	default:
		return models.RecommendationPause
	}
}

// SecondDate moves the match on once both participants want to meet again.
func (s *MatchService) SecondDate(matchID, userID string) (*TransitionResult, error) {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status == models.MatchStatusDateScheduled && Recommend(m.Feedback) != models.RecommendationSecondDate {
		s.metrics.ObserveTransition(models.MatchStatusSecondDate, false)
		return nil, errors.New(errors.ErrCodeForbidden, "A second date opens once you both share interest")
	}
	if err := s.transition(m, models.MatchStatusSecondDate); err != nil {
		return nil, err
	}
	if err := s.matches.Update(m); err != nil {
		return nil, err
	}
	return &TransitionResult{Match: m, Payload: s.payload(coach.SecondDateGuidance(s.now()))}, nil
}

// Close ends the match gently.
func (s *MatchService) Close(matchID, userID string) (*TransitionResult, error) {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(m, models.MatchStatusClosed); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	m.ClosedAt = &now
	if err := s.matches.Update(m); err != nil {
		return nil, err
	}
	return &TransitionResult{Match: m, Payload: s.payload(map[string]any{"message": coach.ClosingMessage})}, nil
}

// Pause flags the match without changing its status.
func (s *MatchService) Pause(matchID, userID string) (*TransitionResult, error) {
	return s.setPaused(matchID, userID, true)
}

func (s *MatchService) Resume(matchID, userID string) (*TransitionResult, error) {
	return s.setPaused(matchID, userID, false)
}

func (s *MatchService) setPaused(matchID, userID string, paused bool) (*TransitionResult, error) {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}
	if lifecycle.IsTerminal(m.Status) {
		return nil, errors.New(errors.ErrCodeValidation, "This connection is already closed")
	}
	if m.Paused == paused {
		return &TransitionResult{Match: m, Payload: s.payload(s.flowPayload(m))}, nil
	}

	m.Paused = paused
	if paused {
		now := s.now().UTC()
		m.PausedAt = &now
	} else {
		m.PausedAt = nil
	}
	if err := s.matches.Update(m); err != nil {
		return nil, err
	}
	return &TransitionResult{Match: m, Payload: s.payload(s.flowPayload(m))}, nil
}

// Cancel withdraws a match before any date has been scheduled.
func (s *MatchService) Cancel(matchID, userID string) error {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return err
	}
	switch m.Status {
	case models.MatchStatusCreated, models.MatchStatusMatched,
		models.MatchStatusInviteSent, models.MatchStatusInviteAccepted:
	default:
		return errors.New(errors.ErrCodeInvalidTransition, "A scheduled connection can be closed but not cancelled")
	}
	if err := s.matches.Delete(m.ID); err != nil {
		return err
	}
	logger.Info("match cancelled", "match_id", m.ID, "user_id", userID)
	return nil
}

// Evaluate runs the full compatibility check between the two participants and
// appends the result to the match history.
func (s *MatchService) Evaluate(matchID, userID string) (*Evaluation, error) {
	m, err := s.participantMatch(matchID, userID)
	if err != nil {
		return nil, err
	}
	partnerID := m.Partner(userID)
	if partnerID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "Your connection has no second person yet")
	}

	self, err := s.profiles.FindByUserID(userID)
	if err != nil {
		return nil, profilesIncomplete(err)
	}
	other, err := s.profiles.FindByUserID(partnerID)
	if err != nil {
		return nil, profilesIncomplete(err)
	}

	res := compatibility.Evaluate(*self, *other)
	s.metrics.ObserveEvaluation(res.Grade, res.Gate)

	count, err := s.matches.AppendEvaluation(m.ID, res.Snapshot(s.now()))
	if err != nil {
		return nil, err
	}

	res.Reasons = s.pipeline.Strings(res.Reasons)
	res.Reason = s.pipeline.Text(res.Reason)
	res.Notes = s.pipeline.Text(res.Notes)
	return &Evaluation{
		Result:       res,
		MatchID:      m.ID,
		Explanation:  s.pipeline.Text(compatibility.Explain(res.Score)),
		HistoryCount: count,
	}, nil
}

// Flow returns the UI stage of the user's current match.
func (s *MatchService) Flow(userID string) (lifecycle.Stage, error) {
	m, err := s.Current(userID)
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return lifecycle.Stage{}, err
	}
	stage := lifecycle.Flow(m)
	stage.Message = s.pipeline.Text(stage.Message)
	return stage, nil
}

// Current is the user's most recent match.
func (s *MatchService) Current(userID string) (*models.Match, error) {
	return s.matches.LatestForUser(userID)
}

func (s *MatchService) List(userID string) ([]models.Match, error) {
	return s.matches.ListForUser(userID)
}

func (s *MatchService) ListAll() ([]models.Match, error) {
	return s.matches.ListAll()
}

func (s *MatchService) transition(m *models.Match, to string) error {
	if m.Paused {
		s.metrics.ObserveTransition(to, false)
		return errors.New(errors.ErrCodeInvalidTransition, coach.PauseMessage)
	}
	decision := lifecycle.GuardTransition(m, to)
	s.metrics.ObserveTransition(to, decision.Allowed)
	if !decision.Allowed {
		return errors.New(errors.ErrCodeInvalidTransition, decision.Error)
	}
	m.Status = to
	return nil
}

func (s *MatchService) participantMatch(matchID, userID string) (*models.Match, error) {
	m, err := s.matches.FindByID(matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(userID) {
		return nil, errors.New(errors.ErrCodeForbidden, "You are not part of this connection")
	}
	return m, nil
}

func (s *MatchService) requireProfile(userID string) (*models.Profile, error) {
	p, err := s.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.New(errors.ErrCodeValidation, "Please create your profile first")
		}
		return nil, err
	}
	return p, nil
}

func (s *MatchService) requireNoOpenMatch(userID string) error {
	list, err := s.matches.ListForUser(userID)
	if err != nil {
		return err
	}
	for _, m := range list {
		if !lifecycle.IsTerminal(m.Status) {
			return errors.New(errors.ErrCodeAlreadyExists, "You already have an open connection")
		}
	}
	return nil
}

func (s *MatchService) flowPayload(m *models.Match) map[string]any {
	stage := lifecycle.Flow(m)
	features := make([]any, 0, len(stage.VisibleFeatures))
	for _, f := range stage.VisibleFeatures {
		features = append(features, f)
	}
	return map[string]any{
		"stage":            stage.Stage,
		"visible_features": features,
		"message":          stage.Message,
	}
}

func (s *MatchService) payload(p map[string]any) map[string]any {
	if out, ok := s.pipeline.Apply(p).(map[string]any); ok {
		return out
	}
	return p
}

func profilesIncomplete(err error) error {
	if errors.Is(err, errors.ErrCodeNotFound) {
		return errors.New(errors.ErrCodeValidation, "Both profiles are needed before evaluating")
	}
	return err
}

// keyedMutex serializes writers of the same match. An entry lives only while
// someone holds or waits for it.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
