package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match status constants
const (
	MatchStatusCreated        = "created"
	MatchStatusMatched        = "matched"
	MatchStatusInviteSent     = "invite_sent"
	MatchStatusInviteAccepted = "invite_accepted"
	MatchStatusDateScheduled  = "date_scheduled"
	MatchStatusSecondDate     = "second_date"
	MatchStatusClosed         = "closed"
)

// Post-date recommendation constants
const (
	RecommendationPause      = "pause"
	RecommendationSecondDate = "second_date"
	RecommendationClose      = "close"
)

type Match struct {
	ID             string      `gorm:"primaryKey;type:varchar(36)" json:"match_id"`
	Participants   StringList  `gorm:"type:text;not null" json:"users"`
	Status         string      `gorm:"type:varchar(20);not null;index" json:"status"`
	PreScore       int         `json:"score,omitempty"`
	PreReasons     StringList  `gorm:"type:text" json:"reasons,omitempty"`
	InvitedBy      string      `gorm:"type:varchar(36)" json:"invited_by,omitempty"`
	AcceptedBy     StringList  `gorm:"type:text" json:"accepted_by,omitempty"`
	DateDetails    *DateOption `gorm:"type:text" json:"date_details,omitempty"`
	Feedback       FeedbackSet `gorm:"type:text" json:"post_date_feedback,omitempty"`
	Recommendation string      `gorm:"type:varchar(20)" json:"recommendation,omitempty"`
	Paused         bool        `gorm:"default:false" json:"paused"`
	History        Snapshots   `gorm:"type:text" json:"compatibility_history"`
	CreatedAt      time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	InvitedAt      *time.Time  `json:"invited_at,omitempty"`
	AcceptedAt     *time.Time  `json:"accepted_at,omitempty"`
	ScheduledAt    *time.Time  `json:"scheduled_at,omitempty"`
	PausedAt       *time.Time  `json:"paused_at,omitempty"`
	ClosedAt       *time.Time  `json:"closed_at,omitempty"`
}

func (Match) TableName() string {
	return "matches"
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// HasParticipant reports whether userID already joined the match.
func (m *Match) HasParticipant(userID string) bool {
	return m.Participants.Contains(userID)
}

// Partner returns the other participant, or "" when the match has only one.
func (m *Match) Partner(userID string) string {
	for _, id := range m.Participants {
		if id != userID {
			return id
		}
	}
	return ""
}

// Clone returns a deep copy so callers can build a new value without touching the stored one.
func (m *Match) Clone() *Match {
	c := *m
	c.Participants = append(StringList(nil), m.Participants...)
	c.PreReasons = append(StringList(nil), m.PreReasons...)
	c.AcceptedBy = append(StringList(nil), m.AcceptedBy...)
	c.History = append(Snapshots(nil), m.History...)
	if m.DateDetails != nil {
		d := *m.DateDetails
		c.DateDetails = &d
	}
	if m.Feedback != nil {
		c.Feedback = make(FeedbackSet, len(m.Feedback))
		for k, v := range m.Feedback {
			c.Feedback[k] = v
		}
	}
	return &c
}

// CompatibilitySnapshot is one entry of a match's append-only evaluation history.
type CompatibilitySnapshot struct {
	EvaluatedAt time.Time `json:"evaluated_at"`
	Score       int       `json:"score"`
	Grade       string    `json:"grade"`
	Compatible  bool      `json:"compatible"`
	Notes       string    `json:"notes"`
}

type Snapshots []CompatibilitySnapshot

func (s Snapshots) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue([]CompatibilitySnapshot(s))
}

func (s *Snapshots) Scan(value interface{}) error {
	var out []CompatibilitySnapshot
	if err := jsonScan(value, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// DateOption describes a proposed or confirmed first date.
type DateOption struct {
	OptionID string `json:"option_id"`
	Type     string `json:"type"` // physical | virtual
	Location string `json:"location"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM
}

func (d DateOption) Value() (driver.Value, error) {
	return jsonValue(d)
}

func (d *DateOption) Scan(value interface{}) error {
	return jsonScan(value, d)
}

// PostDateFeedback is one participant's reflection after the date.
type PostDateFeedback struct {
	Interested  bool      `json:"interested"`
	Notes       string    `json:"notes,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type FeedbackSet map[string]PostDateFeedback

func (f FeedbackSet) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	return jsonValue(map[string]PostDateFeedback(f))
}

func (f *FeedbackSet) Scan(value interface{}) error {
	var out map[string]PostDateFeedback
	if err := jsonScan(value, &out); err != nil {
		return err
	}
	*f = out
	return nil
}

// SafetyReport is the internal record kept when a user reports a concern.
type SafetyReport struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReporterID     string    `gorm:"type:varchar(36);index;not null" json:"reporter_id"`
	MatchID        string    `gorm:"type:varchar(36);index" json:"match_id,omitempty"`
	Reason         string    `gorm:"type:varchar(120)" json:"reason"`
	Details        string    `gorm:"type:text" json:"details,omitempty"`
	EmotionalState string    `gorm:"type:varchar(60)" json:"emotional_state,omitempty"`
	Reviewed       bool      `gorm:"default:false" json:"reviewed"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"received_at"`
}

func (SafetyReport) TableName() string {
	return "safety_reports"
}
