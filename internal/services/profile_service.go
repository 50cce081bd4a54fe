package services

import (
	"context"
	"time"

	"github.com/mroshb/hitched/internal/extraction"
	"github.com/mroshb/hitched/internal/metrics"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/profile"
	"github.com/mroshb/hitched/internal/repositories"
	"github.com/mroshb/hitched/pkg/errors"
	"github.com/mroshb/hitched/pkg/logger"
)

type ProfileService struct {
	profiles   repositories.ProfileStore
	normalizer *profile.Normalizer
	extractor  extraction.Extractor
	metrics    *metrics.Metrics
	timeout    time.Duration
	now        func() time.Time
}

// NewProfileService wires the profile store and the transcript extractor.
// extractor may be nil, in which case Extract is unavailable. timeout bounds
// a single extraction call; zero means no bound beyond ctx.
func NewProfileService(profiles repositories.ProfileStore, extractor extraction.Extractor, m *metrics.Metrics, timeout time.Duration) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		normalizer: profile.NewNormalizer(),
		extractor:  extractor,
		metrics:    m,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Save replaces the user's profile with the normalization of raw. Extracted
// traits from an earlier Extract survive the replacement.
func (s *ProfileService) Save(userID string, raw map[string]any) (*models.Profile, error) {
	p := s.normalizer.Normalize(userID, raw)

	existing, err := s.find(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		p.Extracted = existing.Extracted
	}
	return s.store(&p)
}

// Update merges patch into the stored profile and re-normalizes the result.
// An empty value in patch clears that field.
func (s *ProfileService) Update(userID string, patch map[string]any) (*models.Profile, error) {
	existing, err := s.find(userID)
	if err != nil {
		return nil, err
	}

	base := map[string]any{}
	if existing != nil {
		base = profile.ToRaw(*existing)
	}
	p := s.normalizer.Normalize(userID, profile.Merge(base, patch))
	if existing != nil {
		p.Extracted = existing.Extracted
	}
	return s.store(&p)
}

func (s *ProfileService) Get(userID string) (*models.Profile, error) {
	return s.profiles.FindByUserID(userID)
}

// Completeness reports the required fields the user still has to fill. A user
// without a profile is missing all of them.
func (s *ProfileService) Completeness(userID string) (profile.Completeness, error) {
	p, err := s.find(userID)
	if err != nil {
		return profile.Completeness{}, err
	}
	return profile.CheckCompleteness(p), nil
}

// Extract reads traits from a free-text transcript and stores them on the
// profile. Fields the user has not set yet are filled from the extraction.
// An extractor failure is recorded as an error marker on the traits and does
// not fail the call.
func (s *ProfileService) Extract(ctx context.Context, userID, transcript string) (*models.Profile, error) {
	if s.extractor == nil {
		return nil, errors.New(errors.ErrCodeExtractionFailed, "Extraction is not configured")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := s.now()
	raw, err := s.extractor.Extract(ctx, transcript)
	s.metrics.ObserveExtraction(s.now().Sub(started).Seconds())
	if err != nil {
		if errors.Is(err, errors.ErrCodeValidation) {
			return nil, err
		}
		logger.Warn("extraction failed", "user_id", userID, "error", err)
		raw = map[string]any{"error": errors.MessageOf(err)}
	}

	traits := s.normalizer.NormalizeExtracted(raw)

	existing, err := s.find(userID)
	if err != nil {
		return nil, err
	}
	base := map[string]any{}
	if existing != nil {
		base = profile.ToRaw(*existing)
	}
	if traits.Error == "" {
		base = fillMissing(base, raw)
	}

	p := s.normalizer.Normalize(userID, base)
	p.Extracted = &traits
	return s.store(&p)
}

func (s *ProfileService) find(userID string) (*models.Profile, error) {
	p, err := s.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) store(p *models.Profile) (*models.Profile, error) {
	p.UpdatedAt = s.now().UTC()
	if err := s.profiles.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// fillMissing copies extracted fields into base where base has no value.
func fillMissing(base, extracted map[string]any) map[string]any {
	out := profile.Merge(base, nil)
	for k, v := range extracted {
		if v == nil {
			continue
		}
		key := k
		if k == "relationship_intent" {
			key = "intent"
		}
		if _, ok := out[key]; ok {
			continue
		}
		out[key] = v
	}
	return out
}
