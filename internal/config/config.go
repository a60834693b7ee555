// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Data       DataConfig
	Classifier ClassifierConfig
	Monitoring MonitoringConfig
	Sheets     SheetsConfig
	Drive      DriveConfig
	Insight    InsightConfig
	Geo        GeoConfig
	Holidays   HolidaysConfig
	Storage    StorageConfig
	Alerts     AlertsConfig
	LogLevel   string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns a lib/pq keyword connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns a postgres URL usable by the pgx stdlib driver.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type CacheConfig struct {
	Enabled              bool
	RedisURL             string
	RedisHost            string
	RedisPort            string
	RedisPassword        string
	RedisDB              int
	PredictionTTLSeconds int
	MeetingTTLSeconds    int
}

type DataConfig struct {
	// Source is "csv" or "postgres".
	Source          string
	DatasetPath     string
	ConsumptionPath string
	WorkingDays     float64
}

type ClassifierConfig struct {
	ArtifactPath  string
	RemoteURL     string
	Timeout       time.Duration
	Workers       int
	CriticalLabel string
	WatchLabel    string
	SafeLabel     string
}

// CustomLabels reports whether the classifier vocabulary is overridden.
func (c ClassifierConfig) CustomLabels() bool {
	return c.CriticalLabel != "" && c.WatchLabel != "" && c.SafeLabel != ""
}

// ValidateLabels rejects a vocabulary override that names only some labels.
func (c ClassifierConfig) ValidateLabels() error {
	var set, unset []string
	for _, l := range []struct{ env, value string }{
		{"CLASSIFIER_LABEL_CRITICAL", c.CriticalLabel},
		{"CLASSIFIER_LABEL_WATCH", c.WatchLabel},
		{"CLASSIFIER_LABEL_SAFE", c.SafeLabel},
	} {
		if l.value == "" {
			unset = append(unset, l.env)
		} else {
			set = append(set, l.env)
		}
	}
	if len(set) > 0 && len(unset) > 0 {
		return fmt.Errorf("classifier labels partially configured: %s set but %s missing",
			strings.Join(set, ", "), strings.Join(unset, ", "))
	}
	return nil
}

type MonitoringConfig struct {
	CriticalityArtifactPath string
	AnomalyArtifactPath     string
}

type SheetsConfig struct {
	CredentialsJSON   string
	SpreadsheetID     string
	MonitoringSheet   string
	RecapSheet        string
	DailyMeetingSheet string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
	DownloadDir     string
}

type InsightConfig struct {
	GeminiAPIKey string
	Model        string
	Language     string
}

type GeoConfig struct {
	NominatimURL     string
	UserAgent        string
	CountryCode      string
	RoutingURL       string
	RoutingAPIKey    string
	WarehouseName    string
	WarehouseLat     float64
	WarehouseLon     float64
	TrafficFactorPct float64
	Sections         []string
}

type HolidaysConfig struct {
	APIURL      string
	HorizonDays int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// Prefix is the key prefix artifacts live under; ArtifactDir is the local mirror.
	Prefix      string
	ArtifactDir string
}

type AlertsConfig struct {
	Brokers []string
	Topic   string
}

// Load reads configuration from the environment and an optional .env file.
// Callers own the returned value and pass it down explicitly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: stringList(v, "SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:              v.GetBool("CACHE_ENABLED"),
			RedisURL:             v.GetString("REDIS_URL"),
			RedisHost:            v.GetString("REDIS_HOST"),
			RedisPort:            v.GetString("REDIS_PORT"),
			RedisPassword:        v.GetString("REDIS_PASSWORD"),
			RedisDB:              v.GetInt("REDIS_DB"),
			PredictionTTLSeconds: v.GetInt("CACHE_PREDICTION_TTL_SECONDS"),
			MeetingTTLSeconds:    v.GetInt("CACHE_MEETING_TTL_SECONDS"),
		},
		Data: DataConfig{
			Source:          v.GetString("DATA_SOURCE"),
			DatasetPath:     v.GetString("DATA_DATASET_PATH"),
			ConsumptionPath: v.GetString("DATA_CONSUMPTION_PATH"),
			WorkingDays:     v.GetFloat64("DATA_WORKING_DAYS"),
		},
		Classifier: ClassifierConfig{
			ArtifactPath:  v.GetString("CLASSIFIER_ARTIFACT_PATH"),
			RemoteURL:     v.GetString("CLASSIFIER_REMOTE_URL"),
			Timeout:       time.Duration(v.GetInt("CLASSIFIER_TIMEOUT_SECONDS")) * time.Second,
			Workers:       v.GetInt("CLASSIFIER_WORKERS"),
			CriticalLabel: v.GetString("CLASSIFIER_LABEL_CRITICAL"),
			WatchLabel:    v.GetString("CLASSIFIER_LABEL_WATCH"),
			SafeLabel:     v.GetString("CLASSIFIER_LABEL_SAFE"),
		},
		Monitoring: MonitoringConfig{
			CriticalityArtifactPath: v.GetString("MONITORING_CRITICALITY_ARTIFACT_PATH"),
			AnomalyArtifactPath:     v.GetString("MONITORING_ANOMALY_ARTIFACT_PATH"),
		},
		Sheets: SheetsConfig{
			CredentialsJSON:   v.GetString("GOOGLE_SHEETS_CREDENTIALS_JSON"),
			SpreadsheetID:     v.GetString("SHEETS_SPREADSHEET_ID"),
			MonitoringSheet:   v.GetString("SHEETS_MONITORING_SHEET"),
			RecapSheet:        v.GetString("SHEETS_RECAP_SHEET"),
			DailyMeetingSheet: v.GetString("SHEETS_DAILY_MEETING_SHEET"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("DRIVE_FOLDER_ID"),
			DownloadDir:     v.GetString("DRIVE_DOWNLOAD_DIR"),
		},
		Insight: InsightConfig{
			GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
			Model:        v.GetString("GEMINI_MODEL"),
			Language:     v.GetString("INSIGHT_LANGUAGE"),
		},
		Geo: GeoConfig{
			NominatimURL:     v.GetString("GEO_NOMINATIM_URL"),
			UserAgent:        v.GetString("GEO_USER_AGENT"),
			CountryCode:      v.GetString("GEO_COUNTRY_CODE"),
			RoutingURL:       v.GetString("GEO_ROUTING_URL"),
			RoutingAPIKey:    v.GetString("ORS_API_KEY"),
			WarehouseName:    v.GetString("GEO_WAREHOUSE_NAME"),
			WarehouseLat:     v.GetFloat64("GEO_WAREHOUSE_LAT"),
			WarehouseLon:     v.GetFloat64("GEO_WAREHOUSE_LON"),
			TrafficFactorPct: v.GetFloat64("GEO_TRAFFIC_FACTOR_PCT"),
			Sections:         stringList(v, "PLANT_SECTIONS"),
		},
		Holidays: HolidaysConfig{
			APIURL:      v.GetString("HOLIDAYS_API_URL"),
			HorizonDays: v.GetInt("HOLIDAYS_HORIZON_DAYS"),
		},
		Storage: StorageConfig{
			Endpoint:    v.GetString("STORAGE_ENDPOINT"),
			AccessKey:   v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:   v.GetString("STORAGE_SECRET_KEY"),
			Bucket:      v.GetString("STORAGE_BUCKET"),
			Region:      v.GetString("STORAGE_REGION"),
			UseSSL:      v.GetBool("STORAGE_USE_SSL"),
			Prefix:      v.GetString("STORAGE_PREFIX"),
			ArtifactDir: v.GetString("STORAGE_ARTIFACT_DIR"),
		},
		Alerts: AlertsConfig{
			Brokers: stringList(v, "ALERT_KAFKA_BROKERS"),
			Topic:   v.GetString("ALERT_KAFKA_TOPIC"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	switch cfg.Data.Source {
	case "csv", "postgres":
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q (want csv or postgres)", cfg.Data.Source)
	}

	if err := cfg.Classifier.ValidateLabels(); err != nil {
		return nil, err
	}

	if dir := cfg.Drive.DownloadDir; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ppic")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_PREDICTION_TTL_SECONDS", 600)
	v.SetDefault("CACHE_MEETING_TTL_SECONDS", 60)

	v.SetDefault("DATA_SOURCE", "csv")
	v.SetDefault("DATA_DATASET_PATH", "./data/dummy_dataset.csv")
	v.SetDefault("DATA_CONSUMPTION_PATH", "./data/consumption_map.csv")
	v.SetDefault("DATA_WORKING_DAYS", 22)

	v.SetDefault("CLASSIFIER_ARTIFACT_PATH", "./artifacts/model_tree.json")
	v.SetDefault("CLASSIFIER_REMOTE_URL", "")
	v.SetDefault("CLASSIFIER_TIMEOUT_SECONDS", 5)
	v.SetDefault("CLASSIFIER_WORKERS", 4)
	v.SetDefault("CLASSIFIER_LABEL_CRITICAL", "Merah")
	v.SetDefault("CLASSIFIER_LABEL_WATCH", "Kuning")
	v.SetDefault("CLASSIFIER_LABEL_SAFE", "Hijau")

	v.SetDefault("MONITORING_CRITICALITY_ARTIFACT_PATH", "./artifacts/criticality_tree.json")
	v.SetDefault("MONITORING_ANOMALY_ARTIFACT_PATH", "./artifacts/anomaly_tree.json")

	v.SetDefault("SHEETS_MONITORING_SHEET", "template_monitoring")
	v.SetDefault("SHEETS_RECAP_SHEET", "REKAP")
	v.SetDefault("SHEETS_DAILY_MEETING_SHEET", "Daily Meeting")

	v.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/uploads")

	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash-latest")
	v.SetDefault("INSIGHT_LANGUAGE", "Bahasa Indonesia")

	v.SetDefault("GEO_NOMINATIM_URL", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("GEO_USER_AGENT", "PPIC-Monitor/1.0")
	v.SetDefault("GEO_COUNTRY_CODE", "id")
	v.SetDefault("GEO_ROUTING_URL", "https://api.openrouteservice.org/v2/directions/driving-car")
	v.SetDefault("GEO_WAREHOUSE_NAME", "Warehouse (Pegangsaan Dua)")
	v.SetDefault("GEO_WAREHOUSE_LAT", -6.1653)
	v.SetDefault("GEO_WAREHOUSE_LON", 106.9185)
	v.SetDefault("GEO_TRAFFIC_FACTOR_PCT", 100)
	v.SetDefault("PLANT_SECTIONS", []string{
		"Press", "Welding", "Painting Steel", "Machining", "Assy Engine", "Gensub", "Assy Unit",
	})

	v.SetDefault("HOLIDAYS_API_URL", "https://api-harilibur.vercel.app/api")
	v.SetDefault("HOLIDAYS_HORIZON_DAYS", 7)

	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "artifacts")
	v.SetDefault("STORAGE_ARTIFACT_DIR", "./artifacts")

	v.SetDefault("ALERT_KAFKA_TOPIC", "ppic.material.critical")
}

// stringList reads a list that may come from a default slice or from a
// comma-separated environment variable.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case string:
		raw = strings.Split(val, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
