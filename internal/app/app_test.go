package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			DataDir:       dir,
			MappingFile:   filepath.Join(dir, "item_mapping.json"),
			MappingDBFile: filepath.Join(dir, "mapping_database.json"),
			ForecastsFile: filepath.Join(dir, "forecasts.json"),
			SettingsFile:  filepath.Join(dir, "forecast_settings.json"),
		},
	}
}

func TestNewWithLocalStoresOnly(t *testing.T) {
	a := New(context.Background(), testConfig(t))
	defer a.Close()

	if a.Settings != config.DefaultForecastSettings() {
		t.Errorf("Expected default settings, got %+v", a.Settings)
	}
	if a.Storage != nil {
		t.Errorf("Expected no object storage")
	}
	if len(a.Forecasts.Products()) != 0 || len(a.Mappings.Groups()) != 0 {
		t.Errorf("Expected empty state")
	}
}

func TestNewSkipsMisconfiguredStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Enabled = true

	a := New(context.Background(), cfg)
	if a.Storage != nil {
		t.Errorf("Expected storage to be left out without an endpoint")
	}
}

func TestNewReadsSettingsFile(t *testing.T) {
	cfg := testConfig(t)
	s := config.DefaultForecastSettings()
	s.DaysAhead = 90
	if err := config.SaveSettings(cfg.App.SettingsFile, s); err != nil {
		t.Fatal(err)
	}

	a := New(context.Background(), cfg)
	if a.Forecasts.Settings().DaysAhead != 90 {
		t.Errorf("Expected DaysAhead 90, got %d", a.Forecasts.Settings().DaysAhead)
	}
}

func TestDriveRequiresCredentials(t *testing.T) {
	a := New(context.Background(), testConfig(t))
	if _, err := a.Drive(context.Background()); err == nil {
		t.Error("Expected an error without credentials")
	}
}
