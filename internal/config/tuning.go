package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// maxConfigFileSize bounds tuning files for safety.
const maxConfigFileSize = 1 * 1024 * 1024

// TuningConfig is the JSON tuning surface for the analysis engine. All
// fields are optional pointers so partial configs are safe: omitted fields
// fall back to the engine defaults via the Get* methods.
type TuningConfig struct {
	// Event inference
	PossessionDistanceThreshold *float64 `json:"possession_distance_threshold,omitempty"`
	MinPossessionFrames         *int     `json:"min_possession_frames,omitempty"`
	MinCarryDistance            *float64 `json:"min_carry_distance,omitempty"`
	ReviewConfidenceThreshold   *float64 `json:"review_confidence_threshold,omitempty"`
	FramesPerSecond             *float64 `json:"frames_per_second,omitempty"`
	AttackDirection             *string  `json:"attack_direction,omitempty"`

	// Detection filter
	MinConfidence            *float64 `json:"min_confidence,omitempty"`
	PlayersPerSide           *int     `json:"players_per_side,omitempty"`
	MinMovement              *float64 `json:"min_movement,omitempty"`
	MotionWindowFrames       *int     `json:"motion_window_frames,omitempty"`
	ColorSimilarityThreshold *float64 `json:"color_similarity_threshold,omitempty"`
	PitchFilter              *bool    `json:"pitch_filter,omitempty"`

	// Team classification
	ClusterCount         *int     `json:"cluster_count,omitempty"`
	MaxIterations        *int     `json:"max_iterations,omitempty"`
	ConvergenceThreshold *float64 `json:"convergence_threshold,omitempty"`
	ColorSpace           *string  `json:"color_space,omitempty"`
	MinColorSamples      *int     `json:"min_color_samples,omitempty"`

	// Trajectory filtering
	ProcessNoise      *float64 `json:"process_noise,omitempty"`
	MeasurementNoise  *float64 `json:"measurement_noise,omitempty"`
	ConfidenceDecay   *float64 `json:"confidence_decay,omitempty"`
	MaxPredictionTime *float64 `json:"max_prediction_time,omitempty"`

	// Deduplication
	TemporalRadius *float64 `json:"temporal_radius,omitempty"`
	SourceBoost    *float64 `json:"source_boost,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that set fields hold usable values.
func (c *TuningConfig) Validate() error {
	fractions := map[string]*float64{
		"possession_distance_threshold": c.PossessionDistanceThreshold,
		"review_confidence_threshold":   c.ReviewConfidenceThreshold,
		"min_confidence":                c.MinConfidence,
	}
	for name, v := range fractions {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	if c.FramesPerSecond != nil && *c.FramesPerSecond <= 0 {
		return fmt.Errorf("frames_per_second must be positive, got %f", *c.FramesPerSecond)
	}
	if c.AttackDirection != nil {
		switch *c.AttackDirection {
		case "left_to_right", "right_to_left", "none":
		default:
			return fmt.Errorf("invalid attack_direction %q", *c.AttackDirection)
		}
	}
	if c.ColorSpace != nil {
		switch *c.ColorSpace {
		case "rgb", "hsv":
		default:
			return fmt.Errorf("invalid color_space %q", *c.ColorSpace)
		}
	}
	if c.ClusterCount != nil && *c.ClusterCount < 2 {
		return fmt.Errorf("cluster_count must be at least 2, got %d", *c.ClusterCount)
	}
	if c.MotionWindowFrames != nil && *c.MotionWindowFrames < 1 {
		return fmt.Errorf("motion_window_frames must be positive, got %d", *c.MotionWindowFrames)
	}
	return nil
}

// Float returns the pointed-to value, or fallback when unset.
func Float(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

// Int returns the pointed-to value, or fallback when unset.
func Int(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

// Bool returns the pointed-to value, or fallback when unset.
func Bool(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

// String returns the pointed-to value, or fallback when unset.
func String(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}
