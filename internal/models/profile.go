package models

import (
	"database/sql/driver"
	"time"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Permissive bounds applied when a profile does not declare its own.
const (
	DefaultAgeRangeMin   = 18
	DefaultAgeRangeMax   = 99
	DefaultMaxDistanceKm = 50
)

// Profile is the normalized matching profile of one user.
type Profile struct {
	UserID             string     `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Gender             string     `gorm:"type:varchar(10)" json:"gender,omitempty"`
	SeekingGender      string     `gorm:"type:varchar(10)" json:"seeking_gender,omitempty"`
	ExplicitSeeking    bool       `gorm:"default:false" json:"-"` // false when SeekingGender was derived from Gender
	Age                *int       `json:"age,omitempty"`
	Location           string     `gorm:"type:varchar(120);index" json:"location,omitempty"`
	Intent             string     `gorm:"type:varchar(32);index" json:"intent,omitempty"`
	Temperament        string     `gorm:"type:varchar(20)" json:"temperament,omitempty"`
	CommunicationStyle string     `gorm:"type:varchar(20)" json:"communication_style,omitempty"`
	Values             StringList `gorm:"type:text" json:"values"`
	Lifestyle          StringList `gorm:"type:text" json:"lifestyle"`
	Dealbreakers       StringList `gorm:"type:text" json:"dealbreakers"`
	Flags              FlagSet    `gorm:"type:text" json:"flags,omitempty"`
	AgeRangeMin        *int       `json:"age_range_min,omitempty"`
	AgeRangeMax        *int       `json:"age_range_max,omitempty"`
	MaxDistanceKm      *int       `json:"max_distance_km,omitempty"`
	Notes              string     `gorm:"type:varchar(960)" json:"notes_for_matching,omitempty"`
	Extracted          *Traits    `gorm:"type:text" json:"extracted,omitempty"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// AgeBounds returns the declared age range, falling back to the permissive defaults.
func (p *Profile) AgeBounds() (int, int) {
	return intOr(p.AgeRangeMin, DefaultAgeRangeMin), intOr(p.AgeRangeMax, DefaultAgeRangeMax)
}

// DistanceLimit returns the declared maximum distance in km, or the default.
func (p *Profile) DistanceLimit() int {
	return intOr(p.MaxDistanceKm, DefaultMaxDistanceKm)
}

// Traits returns the coarse matching signals of the profile. A successful
// extraction wins, otherwise the signals are taken from the profile fields.
func (p *Profile) Traits() Traits {
	if p.Extracted != nil && p.Extracted.Error == "" {
		return *p.Extracted
	}
	return Traits{
		RelationshipIntent: p.Intent,
		Temperament:        p.Temperament,
		CommunicationStyle: p.CommunicationStyle,
		Location:           p.Location,
		Values:             p.Values,
	}
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// IntPtr is a small helper for optional numeric fields.
func IntPtr(v int) *int {
	return &v
}

// Traits is the normalized output of transcript extraction, also used by the
// coarse pre-match scorer. Error is set when extraction produced nothing usable.
type Traits struct {
	RelationshipIntent string     `json:"relationship_intent,omitempty"`
	Temperament        string     `json:"temperament,omitempty"`
	CommunicationStyle string     `json:"communication_style,omitempty"`
	Location           string     `json:"location,omitempty"`
	Values             StringList `json:"values,omitempty"`
	Error              string     `json:"error,omitempty"`
}

func (t Traits) Value() (driver.Value, error) {
	return jsonValue(t)
}

func (t *Traits) Scan(value interface{}) error {
	return jsonScan(value, t)
}
