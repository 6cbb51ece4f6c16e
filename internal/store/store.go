// Package store persists reviewed artifacts as YAML records on disk.
package store

//go:generate go tool mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spboyer/estimator/internal/models"
	"gopkg.in/yaml.v3"
)

// PresetWriter persists a reviewed preset.
type PresetWriter interface {
	SavePreset(ctx context.Context, preset models.Preset) error
}

// EstimationWriter persists one bulk estimation.
type EstimationWriter interface {
	SaveEstimation(ctx context.Context, result models.EstimationResult) error
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const (
	presetsDir     = "presets"
	estimationsDir = "estimations"
)

// FileStore writes one YAML file per record. Saving the same item twice
// overwrites the same file.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var (
	_ PresetWriter     = (*FileStore)(nil)
	_ EstimationWriter = (*FileStore)(nil)
)

// New creates a store rooted at dir.
func New(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// SavePreset implements [PresetWriter].
func (s *FileStore) SavePreset(ctx context.Context, preset models.Preset) error {
	if strings.TrimSpace(preset.Name) == "" {
		return errors.New("preset name is required")
	}
	return s.put(ctx, s.PresetPath(preset.Name), preset)
}

// SaveEstimation implements [EstimationWriter]. Failed results are rejected.
func (s *FileStore) SaveEstimation(ctx context.Context, result models.EstimationResult) error {
	if strings.TrimSpace(result.RequirementID) == "" {
		return errors.New("requirement id is required")
	}
	if !result.Success {
		return fmt.Errorf("requirement %q: refusing to save a failed estimation", result.RequirementID)
	}
	return s.put(ctx, s.EstimationPath(result.RequirementID), result.Normalize())
}

// LoadPreset reads the preset saved under name.
func (s *FileStore) LoadPreset(name string) (*models.Preset, error) {
	var p models.Preset
	if err := s.get(s.PresetPath(name), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadEstimation reads the estimation saved for a requirement.
func (s *FileStore) LoadEstimation(requirementID string) (*models.EstimationResult, error) {
	var r models.EstimationResult
	if err := s.get(s.EstimationPath(requirementID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// PresetPath returns the file a preset with the given name is saved to.
func (s *FileStore) PresetPath(name string) string {
	return filepath.Join(s.dir, presetsDir, recordKey(name)+".yaml")
}

// EstimationPath returns the file a requirement's estimation is saved to.
func (s *FileStore) EstimationPath(requirementID string) string {
	return filepath.Join(s.dir, estimationsDir, recordKey(requirementID)+".yaml")
}

func (s *FileStore) put(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	// write-then-rename: readers never see a partial record
	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

func (s *FileStore) get(path string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("reading record: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing record %s: %w", filepath.Base(path), err)
	}
	return nil
}

// recordKey turns an arbitrary id into a stable file name: a readable slug
// plus a short hash of the original so distinct ids never collide.
func recordKey(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(id)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}

	h := sha256.New()
	_ = writeString(h, id)
	sum := hex.EncodeToString(h.Sum(nil))[:8]
	if slug == "" {
		return sum
	}
	return slug + "-" + sum
}

func writeString(w io.Writer, s string) error {
	// null byte delimiter keeps concatenated fields from colliding
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
