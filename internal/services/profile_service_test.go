package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mroshb/hitched/internal/extraction"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/repositories/memory"
	"github.com/mroshb/hitched/pkg/errors"
)

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string) (map[string]any, error) {
	return nil, errors.Wrap(stderrors.New("quota"), errors.ErrCodeExtractionFailed, "model unavailable")
}

func TestProfileService_SaveAndUpdate(t *testing.T) {
	s := NewProfileService(memory.NewProfileStore(), nil, nil, 0)

	p, err := s.Save("u1", map[string]any{"gender": "female", "age": "29", "location": "Leeds"})
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, p.SeekingGender)
	assert.Equal(t, "leeds", p.Location)

	p, err = s.Update("u1", map[string]any{"intent": "marriage", "location": ""})
	require.NoError(t, err)
	assert.Equal(t, "marriage", p.Intent)
	assert.Empty(t, p.Location)
	require.NotNil(t, p.Age)
	assert.Equal(t, 29, *p.Age)

	got, err := s.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, "marriage", got.Intent)

	_, err = s.Get("missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestProfileService_UpdateRederivesSeekingGender(t *testing.T) {
	s := NewProfileService(memory.NewProfileStore(), nil, nil, 0)

	_, err := s.Save("u1", map[string]any{"gender": "male"})
	require.NoError(t, err)

	p, err := s.Update("u1", map[string]any{"gender": "female"})
	require.NoError(t, err)
	assert.Equal(t, models.GenderFemale, p.Gender)
	assert.Equal(t, models.GenderMale, p.SeekingGender)
	assert.False(t, p.ExplicitSeeking)

	p, err = s.Update("u1", map[string]any{"seeking_gender": "female"})
	require.NoError(t, err)
	assert.True(t, p.ExplicitSeeking)

	p, err = s.Update("u1", map[string]any{"gender": "male"})
	require.NoError(t, err)
	assert.Equal(t, models.GenderFemale, p.SeekingGender, "an explicit choice survives a gender change")
}

func TestProfileService_ExtractKeepsDerivedSeekingGender(t *testing.T) {
	s := NewProfileService(memory.NewProfileStore(), extraction.KeywordExtractor{}, nil, 0)

	_, err := s.Save("u1", map[string]any{"gender": "male"})
	require.NoError(t, err)
	_, err = s.Extract(context.Background(), "u1", "I value honesty.")
	require.NoError(t, err)

	p, err := s.Update("u1", map[string]any{"gender": "female"})
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, p.SeekingGender)
}

func TestProfileService_Completeness(t *testing.T) {
	s := NewProfileService(memory.NewProfileStore(), nil, nil, 0)

	c, err := s.Completeness("nobody")
	require.NoError(t, err)
	assert.False(t, c.Complete)
	assert.Len(t, c.Missing, 6)

	_, err = s.Save("u1", map[string]any{
		"age": 30, "location": "Leeds", "intent": "long_term", "values": "honesty",
		"communication_style": "direct", "temperament": "calm",
	})
	require.NoError(t, err)

	c, err = s.Completeness("u1")
	require.NoError(t, err)
	assert.True(t, c.Complete)
}

func TestProfileService_ExtractFillsMissingFields(t *testing.T) {
	s := NewProfileService(memory.NewProfileStore(), extraction.KeywordExtractor{}, nil, 0)

	_, err := s.Save("u1", map[string]any{"gender": "male", "location": "Leeds"})
	require.NoError(t, err)

	p, err := s.Extract(context.Background(), "u1", "I'm 31, live in Birmingham and want something long term. I value honesty.")
	require.NoError(t, err)

	require.NotNil(t, p.Extracted)
	assert.Empty(t, p.Extracted.Error)
	assert.Equal(t, "long_term", p.Extracted.RelationshipIntent)
	assert.Equal(t, "long_term", p.Intent)
	assert.Equal(t, "leeds", p.Location, "fields set by the user are kept")
	require.NotNil(t, p.Age)
	assert.Equal(t, 31, *p.Age)
	assert.Equal(t, models.StringList{"honesty"}, p.Values)

	again, err := s.Save("u1", map[string]any{"gender": "male"})
	require.NoError(t, err)
	assert.Equal(t, p.Extracted, again.Extracted)
}

func TestProfileService_ExtractFailureRecordsMarker(t *testing.T) {
	s := NewProfileService(memory.NewProfileStore(), failingExtractor{}, nil, 0)

	p, err := s.Extract(context.Background(), "u1", "hello")
	require.NoError(t, err)
	require.NotNil(t, p.Extracted)
	assert.Equal(t, "model unavailable", p.Extracted.Error)
}

func TestProfileService_ExtractWithoutExtractor(t *testing.T) {
	s := NewProfileService(memory.NewProfileStore(), nil, nil, 0)

	_, err := s.Extract(context.Background(), "u1", "hello")
	assert.True(t, errors.Is(err, errors.ErrCodeExtractionFailed))
}
