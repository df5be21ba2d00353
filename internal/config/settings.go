package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ErrInvalidSettings is returned when a settings value is outside its
// accepted range.
var ErrInvalidSettings = errors.New("invalid forecast settings")

// ForecastSettings holds the tunables of the forecasting core. The value is
// passed explicitly to every component and never modified after loading.
type ForecastSettings struct {
	// Forecast horizon in days.
	DaysAhead int `json:"DaysAhead"`
	// Forecasts below this confidence are hidden from reports.
	MinConfidenceThreshold float64 `json:"MinConfidenceThreshold"`
	// Share of the delivery time added as a margin before the need date.
	SafetyFactorForOrderPlacement float64 `json:"SafetyFactorForOrderPlacement"`
	// Volume change, in percent, below which volumes are reported as stable.
	StableVolumeThreshold float64 `json:"StableVolumeThreshold"`
	// Coefficient used for months without a seasonality signal.
	DefaultSeasonalityCoefficient float64 `json:"DefaultSeasonalityCoefficient"`
	// Minimum name similarity for attaching a line without article code.
	SimilarityThreshold float64 `json:"SimilarityThreshold"`
	// Lead time assumed when no delivery dates are known.
	DefaultDeliveryDays float64 `json:"DefaultDeliveryDays"`
	// Number of successive projections after the primary forecast.
	MaxProjections int `json:"MaxProjections"`
	// Projection step used when a product has no usable interval.
	DefaultOrderInterval float64 `json:"DefaultOrderInterval"`
	// Placement dates within this many days of a batch anchor share a batch.
	BatchWindowDays float64 `json:"BatchWindowDays"`
}

// DefaultForecastSettings returns the built-in settings.
func DefaultForecastSettings() ForecastSettings {
	return ForecastSettings{
		DaysAhead:                     30,
		MinConfidenceThreshold:        0,
		SafetyFactorForOrderPlacement: 0.2,
		StableVolumeThreshold:         10.0,
		DefaultSeasonalityCoefficient: 1.0,
		SimilarityThreshold:           0.8,
		DefaultDeliveryDays:           14,
		MaxProjections:                5,
		DefaultOrderInterval:          30,
		BatchWindowDays:               3,
	}
}

// SafetyMultiplier is the factor applied to the delivery time when computing
// the placement date.
func (s ForecastSettings) SafetyMultiplier() float64 {
	return 1 + s.SafetyFactorForOrderPlacement
}

// Validate checks every value against its accepted range.
func (s ForecastSettings) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"DaysAhead", s.DaysAhead >= 1 && s.DaysAhead <= 3650},
		{"MinConfidenceThreshold", s.MinConfidenceThreshold >= 0 && s.MinConfidenceThreshold <= 100},
		{"SafetyFactorForOrderPlacement", s.SafetyFactorForOrderPlacement >= 0 && s.SafetyFactorForOrderPlacement <= 5},
		{"StableVolumeThreshold", s.StableVolumeThreshold >= 0 && s.StableVolumeThreshold <= 100},
		{"DefaultSeasonalityCoefficient", s.DefaultSeasonalityCoefficient > 0 && s.DefaultSeasonalityCoefficient <= 10},
		{"SimilarityThreshold", s.SimilarityThreshold > 0 && s.SimilarityThreshold <= 1},
		{"DefaultDeliveryDays", s.DefaultDeliveryDays >= 0 && s.DefaultDeliveryDays <= 365},
		{"MaxProjections", s.MaxProjections >= 0 && s.MaxProjections <= 50},
		{"DefaultOrderInterval", s.DefaultOrderInterval > 0 && s.DefaultOrderInterval <= 3650},
		{"BatchWindowDays", s.BatchWindowDays >= 0 && s.BatchWindowDays <= 365},
	}

	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s out of range", ErrInvalidSettings, c.name)
		}
	}
	return nil
}

// LoadSettings reads settings from a JSON file. A missing file yields the
// defaults. On a read or validation failure the defaults are returned together
// with the error so the caller can log it and carry on.
func LoadSettings(path string) (ForecastSettings, error) {
	defaults := DefaultForecastSettings()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	registerDefaults(v, defaults)

	if err := v.ReadInConfig(); err != nil {
		return defaults, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	var s ForecastSettings
	if err := v.Unmarshal(&s); err != nil {
		return defaults, fmt.Errorf("failed to decode settings %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return defaults, err
	}

	return s, nil
}

// SaveSettings writes settings as indented JSON.
func SaveSettings(path string, s ForecastSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed creating directory for %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", path, err)
	}
	return nil
}

func registerDefaults(v *viper.Viper, s ForecastSettings) {
	v.SetDefault("DaysAhead", s.DaysAhead)
	v.SetDefault("MinConfidenceThreshold", s.MinConfidenceThreshold)
	v.SetDefault("SafetyFactorForOrderPlacement", s.SafetyFactorForOrderPlacement)
	v.SetDefault("StableVolumeThreshold", s.StableVolumeThreshold)
	v.SetDefault("DefaultSeasonalityCoefficient", s.DefaultSeasonalityCoefficient)
	v.SetDefault("SimilarityThreshold", s.SimilarityThreshold)
	v.SetDefault("DefaultDeliveryDays", s.DefaultDeliveryDays)
	v.SetDefault("MaxProjections", s.MaxProjections)
	v.SetDefault("DefaultOrderInterval", s.DefaultOrderInterval)
	v.SetDefault("BatchWindowDays", s.BatchWindowDays)
}

var settingDescriptions = map[string]string{
	"DaysAhead":                     "Forecast horizon in days. Longer horizons allow planning further ahead but distant dates are less reliable.",
	"MinConfidenceThreshold":        "Forecasts with a lower confidence percentage are left out of the order table and the export.",
	"SafetyFactorForOrderPlacement": "Share of the average delivery time kept as a margin when choosing the placement date. Larger values place orders earlier.",
	"StableVolumeThreshold":         "Change of order volume, in percent, below which volumes are described as stable.",
	"DefaultSeasonalityCoefficient": "Coefficient used for months without a seasonality signal. 1.0 means no seasonal effect.",
	"SimilarityThreshold":           "Minimum name similarity (0..1) for attaching an order line without article code to an existing product.",
	"DefaultDeliveryDays":           "Delivery time assumed for products without recorded delivery dates.",
	"MaxProjections":                "Number of additional future orders projected per product inside the horizon.",
	"DefaultOrderInterval":          "Step in days between projections for products without a known order interval.",
	"BatchWindowDays":               "Orders whose placement dates are this close to the first order of a batch are grouped together.",
}

// Describe returns the operator-facing description of a settings field.
func Describe(field string) string {
	if d, ok := settingDescriptions[field]; ok {
		return d
	}
	return "No description available"
}
