// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir       string
	ExportDir     string
	UploadDir     string
	DownloadDir   string
	LogLevel      string
	LogFormat     string
	MappingFile   string
	MappingDBFile string
	ForecastsFile string
	SettingsFile  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// StorageConfig describes the S3-compatible bucket used for source workbooks
// and exported reports.
type StorageConfig struct {
	Enabled      bool
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	UseSSL       bool
	SourcePrefix string
	ExportPrefix string
}

type DriveConfig struct {
	CredentialsFile string
	FolderID        string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_ENABLED", false)
		viper.SetDefault("DB_DRIVER", "postgres")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "forecast")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_DATA_DIR", "./data")
		viper.SetDefault("APP_EXPORT_DIR", "./data/export")
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_DOWNLOAD_DIR", "./data/downloads")
		viper.SetDefault("APP_LOG_LEVEL", "info")
		viper.SetDefault("APP_LOG_FORMAT", "console")
		viper.SetDefault("APP_MAPPING_FILE", "item_mapping.json")
		viper.SetDefault("APP_MAPPING_DB_FILE", "mapping_database.json")
		viper.SetDefault("APP_FORECASTS_FILE", "forecasts.json")
		viper.SetDefault("APP_SETTINGS_FILE", "forecast_settings.json")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_SOURCE_PREFIX", "orders/")
		viper.SetDefault("STORAGE_EXPORT_PREFIX", "reports/")
		viper.SetDefault("DRIVE_CREDENTIALS_FILE", "")
		viper.SetDefault("DRIVE_FOLDER_ID", "")

		// Read from environment variables
		viper.AutomaticEnv()

		dataDir := viper.GetString("APP_DATA_DIR")
		ensureDir(dataDir)
		ensureDir(viper.GetString("APP_EXPORT_DIR"))
		ensureDir(viper.GetString("APP_UPLOAD_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Enabled:  viper.GetBool("DB_ENABLED"),
				Driver:   viper.GetString("DB_DRIVER"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				DataDir:       dataDir,
				ExportDir:     viper.GetString("APP_EXPORT_DIR"),
				UploadDir:     viper.GetString("APP_UPLOAD_DIR"),
				DownloadDir:   viper.GetString("APP_DOWNLOAD_DIR"),
				LogLevel:      viper.GetString("APP_LOG_LEVEL"),
				LogFormat:     viper.GetString("APP_LOG_FORMAT"),
				MappingFile:   inDir(dataDir, viper.GetString("APP_MAPPING_FILE")),
				MappingDBFile: inDir(dataDir, viper.GetString("APP_MAPPING_DB_FILE")),
				ForecastsFile: inDir(dataDir, viper.GetString("APP_FORECASTS_FILE")),
				SettingsFile:  inDir(dataDir, viper.GetString("APP_SETTINGS_FILE")),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:      viper.GetBool("STORAGE_ENABLED"),
				Endpoint:     viper.GetString("STORAGE_ENDPOINT"),
				AccessKey:    viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey:    viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:       viper.GetString("STORAGE_BUCKET"),
				Region:       viper.GetString("STORAGE_REGION"),
				UseSSL:       viper.GetBool("STORAGE_USE_SSL"),
				SourcePrefix: viper.GetString("STORAGE_SOURCE_PREFIX"),
				ExportPrefix: viper.GetString("STORAGE_EXPORT_PREFIX"),
			},
			Drive: DriveConfig{
				CredentialsFile: viper.GetString("DRIVE_CREDENTIALS_FILE"),
				FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
			},
		}
	})

	return instance
}

// inDir resolves relative file names against the data directory.
func inDir(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
