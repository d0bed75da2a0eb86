package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SymptomBundle is the versioned, per-user collection of trained per-symptom
// classifiers. Bundles are replaced wholesale on retrain and never shared
// between users.
type SymptomBundle struct {
	UserID          uint               `json:"user_id"`
	ModelVersion    string             `json:"model_version"`
	TrainedSymptoms []string           `json:"trained_symptoms"`
	Models          map[string]*Forest `json:"models"`
	FeatureNames    []string           `json:"feature_names"`
	TrainedAt       time.Time          `json:"trained_at"`
}

// Model returns the classifier for a symptom, or nil when the symptom had no
// training support.
func (b *SymptomBundle) Model(symptom string) *Forest {
	if b == nil {
		return nil
	}
	return b.Models[symptom]
}

// ArtifactStore persists per-user model artifacts. Implementations must make
// bundle replacement atomic from a reader's point of view: a concurrent load
// sees either the fully-old or fully-new artifact, never a mix.
type ArtifactStore interface {
	SaveBundle(bundle *SymptomBundle) error
	LoadBundle(userID uint) (*SymptomBundle, error)
	SaveRegressor(userID uint, model *GlucoseRegressor) error
	LoadRegressor(userID uint) (*GlucoseRegressor, error)
	DeleteUserArtifacts(userID uint) error
}

// FileArtifactStore keeps artifacts as JSON documents in a flat directory,
// one bundle file and one forecast-regressor file per user.
type FileArtifactStore struct {
	dir string
}

func NewFileArtifactStore(dir string) (*FileArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileArtifactStore{dir: dir}, nil
}

func (s *FileArtifactStore) bundlePath(userID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("user_model_%d.json", userID))
}

func (s *FileArtifactStore) regressorPath(userID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("user_forecast_%d.json", userID))
}

// writeAtomic writes to a temp file in the same directory and renames it into
// place so readers never observe a partially written artifact.
func (s *FileArtifactStore) writeAtomic(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileArtifactStore) SaveBundle(bundle *SymptomBundle) error {
	return s.writeAtomic(s.bundlePath(bundle.UserID), bundle)
}

func (s *FileArtifactStore) LoadBundle(userID uint) (*SymptomBundle, error) {
	data, err := os.ReadFile(s.bundlePath(userID))
	if err != nil {
		return nil, err
	}
	var bundle SymptomBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode model bundle: %w", err)
	}
	return &bundle, nil
}

func (s *FileArtifactStore) SaveRegressor(userID uint, model *GlucoseRegressor) error {
	return s.writeAtomic(s.regressorPath(userID), model)
}

func (s *FileArtifactStore) LoadRegressor(userID uint) (*GlucoseRegressor, error) {
	data, err := os.ReadFile(s.regressorPath(userID))
	if err != nil {
		return nil, err
	}
	var model GlucoseRegressor
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to decode glucose regressor: %w", err)
	}
	return &model, nil
}

// DeleteUserArtifacts removes every artifact file for the user. The trainer
// calls this before writing a fresh bundle so stale symptom models from a
// prior version cannot outlive a retrain.
func (s *FileArtifactStore) DeleteUserArtifacts(userID uint) error {
	for _, path := range []string{s.bundlePath(userID), s.regressorPath(userID)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
