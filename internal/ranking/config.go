package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// CalibrationConfig is the JSON layout of the calibration file.
type CalibrationConfig struct {
	Version string `json:"version"`
	// Fallback weights apply to queries whose weights sum to zero.
	Fallback Weights `json:"fallback_weights"`
}

// DefaultFallbackWeights weighs age, distance and rate equally.
func DefaultFallbackWeights() Weights {
	return EqualWeights()
}

// LoadCalibration loads fallback weights from a JSON calibration file.
// An empty path yields the defaults. On any error the defaults are returned
// along with the error so callers can log and continue.
// Dimensions omitted from the file, or set to 0, keep their default weight.
func LoadCalibration(filePath string) (Weights, error) {
	if filePath == "" {
		return DefaultFallbackWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultFallbackWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultFallbackWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	for _, d := range Dimensions {
		if config.Fallback.Of(d) < 0 {
			return DefaultFallbackWeights(), fmt.Errorf("calibration weight %s: %w", d, ErrNegativeWeight)
		}
	}

	defaults := DefaultFallbackWeights()
	merged := MergeCalibration(defaults, config.Fallback)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration applies the non-zero weights of override on top of base.
func MergeCalibration(base, override Weights) Weights {
	result := base
	for _, d := range Dimensions {
		if v := override.Of(d); v != 0 {
			result = result.With(d, v)
		}
	}
	return result
}

func logCalibrationOverrides(defaults, loaded Weights) {
	var overrides []string
	for _, d := range Dimensions {
		if loaded.Of(d) != defaults.Of(d) {
			overrides = append(overrides, fmt.Sprintf("%s: %.2f -> %.2f", d, defaults.Of(d), loaded.Of(d)))
		}
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using defaults)")
	}
}
