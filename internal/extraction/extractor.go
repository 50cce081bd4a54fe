// Package extraction turns a free-text self description into raw profile
// fields. Results are untrusted and must go through the profile normalizer.
package extraction

import (
	"context"

	"github.com/mroshb/hitched/pkg/errors"
	"github.com/mroshb/hitched/pkg/logger"
)

type Extractor interface {
	Extract(ctx context.Context, transcript string) (map[string]any, error)
}

// Fallback asks Primary first and uses Secondary when it fails.
type Fallback struct {
	Primary   Extractor
	Secondary Extractor
}

func (f Fallback) Extract(ctx context.Context, transcript string) (map[string]any, error) {
	if f.Primary != nil {
		out, err := f.Primary.Extract(ctx, transcript)
		if err == nil {
			return out, nil
		}
		logger.Warn("Primary extractor failed, using fallback", "error", err)
	}
	if f.Secondary == nil {
		return nil, errors.New(errors.ErrCodeExtractionFailed, "no extractor available")
	}
	return f.Secondary.Extract(ctx, transcript)
}
