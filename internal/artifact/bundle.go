// Package artifact handles the serialized model bundle: a model file and a
// feature schema file that are written together and must be loaded together.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/feature"
	"github.com/vaishrk/pcos-care/internal/ml"
)

// Model is the serialized classifier artifact. BundleID ties it to the
// schema artifact written in the same training run; SchemaFingerprint
// guards against a schema file with the right ID but the wrong shape.
type Model struct {
	TrainedAt         time.Time  `json:"trained_at"`
	BundleID          string     `json:"bundle_id"`
	SchemaFingerprint string     `json:"schema_fingerprint"`
	Accuracy          float64    `json:"accuracy"`
	Forest            *ml.Forest `json:"forest"`
}

// SchemaFile is the serialized feature schema artifact, including the
// training-time imputation medians.
type SchemaFile struct {
	BundleID string         `json:"bundle_id"`
	Schema   feature.Schema `json:"schema"`
}

// Bundle is a loaded, verified model + schema pair.
type Bundle struct {
	Model  Model
	Schema feature.Schema
}

// Write publishes both artifacts atomically: each file is written to a
// temporary sibling and renamed into place, model first. A failure leaves
// no partial artifact at either destination.
func Write(modelPath, schemaPath string, forest *ml.Forest, schema feature.Schema, accuracy float64) (string, error) {
	bundleID := uuid.NewString()

	model := Model{
		BundleID:          bundleID,
		SchemaFingerprint: schema.Fingerprint(),
		TrainedAt:         time.Now().UTC(),
		Accuracy:          accuracy,
		Forest:            forest,
	}
	schemaFile := SchemaFile{
		BundleID: bundleID,
		Schema:   schema,
	}

	modelTmp, err := stage(modelPath, model)
	if err != nil {
		return "", fmt.Errorf("failed to stage model artifact: %w", err)
	}
	schemaTmp, err := stage(schemaPath, schemaFile)
	if err != nil {
		removeQuiet(modelTmp)
		return "", fmt.Errorf("failed to stage schema artifact: %w", err)
	}

	if err := os.Rename(modelTmp, modelPath); err != nil {
		removeQuiet(modelTmp)
		removeQuiet(schemaTmp)
		return "", fmt.Errorf("failed to publish model artifact: %w", err)
	}
	if err := os.Rename(schemaTmp, schemaPath); err != nil {
		// Roll the model back rather than leave a mismatched pair. Even if
		// the rollback fails, Load refuses the pair on bundle ID mismatch.
		removeQuiet(modelPath)
		removeQuiet(schemaTmp)
		return "", fmt.Errorf("failed to publish schema artifact: %w", err)
	}
	return bundleID, nil
}

// Load reads and verifies a model + schema pair. A missing file, mismatched
// bundle IDs, or a schema whose shape differs from the one the model was
// trained with all wrap ErrModelNotFound: the pair is unusable as a unit.
func Load(modelPath, schemaPath string) (*Bundle, error) {
	var model Model
	if err := readJSON(modelPath, &model); err != nil {
		return nil, fmt.Errorf("%w: model file %s: %v", common.ErrModelNotFound, modelPath, err)
	}

	var schemaFile SchemaFile
	if err := readJSON(schemaPath, &schemaFile); err != nil {
		return nil, fmt.Errorf("%w: schema file %s: %v", common.ErrModelNotFound, schemaPath, err)
	}

	if model.BundleID != schemaFile.BundleID {
		return nil, fmt.Errorf("%w: model bundle %s does not match schema bundle %s",
			common.ErrModelNotFound, model.BundleID, schemaFile.BundleID)
	}
	if model.SchemaFingerprint != schemaFile.Schema.Fingerprint() {
		return nil, fmt.Errorf("%w: schema shape changed since the model was trained", common.ErrSchemaMismatch)
	}
	if model.Forest == nil {
		return nil, fmt.Errorf("%w: model file contains no forest", common.ErrModelNotFound)
	}
	if model.Forest.NumFeatures != schemaFile.Schema.Len() {
		return nil, fmt.Errorf("%w: model expects %d features, schema defines %d",
			common.ErrSchemaMismatch, model.Forest.NumFeatures, schemaFile.Schema.Len())
	}

	return &Bundle{Model: model, Schema: schemaFile.Schema}, nil
}

// stage writes the artifact to a temporary sibling of its destination and
// returns the temporary path.
func stage(path string, v any) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write temporary artifact: %w", err)
	}
	return tmp, nil
}

func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to clean up artifact file", "path", path, "error", err)
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) // #nosec G304 - paths come from operator configuration
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
