// Package file reads dataset inputs from the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

// Source reads the native dataset and its optional companions from disk.
// It implements pipeline.Extractor.
type Source struct {
	nativePath    string
	secondaryPath string
	locationsPath string
	clock         clockwork.Clock
}

// NewSource creates a Source. The native path is required; empty secondary
// or locations paths disable those inputs.
func NewSource(nativePath, secondaryPath, locationsPath string, clock clockwork.Clock) *Source {
	return &Source{
		nativePath:    nativePath,
		secondaryPath: secondaryPath,
		locationsPath: locationsPath,
		clock:         clock,
	}
}

// Extract reads all configured files. A missing optional file yields an
// empty section rather than an error.
func (s *Source) Extract(ctx context.Context) (domain.RawBundle, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawBundle{}, err
	}

	native, err := os.ReadFile(s.nativePath)
	if err != nil {
		return domain.RawBundle{}, fmt.Errorf("read dataset: %w", err)
	}
	secondary, err := readOptional(s.secondaryPath)
	if err != nil {
		return domain.RawBundle{}, fmt.Errorf("read secondary export: %w", err)
	}
	locations, err := readOptional(s.locationsPath)
	if err != nil {
		return domain.RawBundle{}, fmt.Errorf("read station locations: %w", err)
	}

	return domain.RawBundle{
		Native:    native,
		Secondary: secondary,
		Locations: locations,
		ReadAt:    s.clock.Now(),
	}, nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}
