package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"parklot/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	API        APIConfig        `yaml:"api"`
	Parking    ParkingConfig    `yaml:"parking"`
	Exports    ExportConfig     `yaml:"exports"`
	Floors     []FloorSeed      `yaml:"floors"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path   string       `yaml:"path"`
	Backup BackupConfig `yaml:"backup"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

// APIClientKey binds an API key to the holder identity it acts as.
// Role "admin" grants elevated access to any reservation and to
// catalog administration.
type APIClientKey struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	HolderID string `yaml:"holder_id"`
	Role     string `yaml:"role"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ParkingConfig struct {
	MaxDurationHours int                `yaml:"max_duration_hours"`
	HourlyRates      map[string]float64 `yaml:"hourly_rates"`
	CacheTTLSeconds  int                `yaml:"cache_ttl_seconds"`
}

// MaxDuration returns the reservation window cap as a duration.
func (p ParkingConfig) MaxDuration() time.Duration {
	return time.Duration(p.MaxDurationHours) * time.Hour
}

// CacheTTL returns the read-cache lifetime as a duration.
func (p ParkingConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// FloorSeed declares a floor and its slots to be synced into the
// catalog at startup. Seeding is idempotent.
type FloorSeed struct {
	FloorNumber int        `yaml:"floor_number"`
	Name        string     `yaml:"name"`
	Slots       []SlotSeed `yaml:"slots"`
}

type SlotSeed struct {
	Number      string `yaml:"number"`
	VehicleType string `yaml:"vehicle_type"`
}

func Load(configPath string) (*Config, error) {
	// Optional .env for local runs; values referenced as ${VAR} in YAML.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth is enabled but no api keys are configured")
	}

	seenKeys := make(map[string]bool, len(c.API.Auth.APIKeys))
	for _, k := range c.API.Auth.APIKeys {
		if k.Key == "" {
			return fmt.Errorf("api key for client '%s' is empty", k.Name)
		}
		if k.HolderID == "" {
			return fmt.Errorf("api key '%s' has no holder_id", k.Name)
		}
		if seenKeys[k.Key] {
			return fmt.Errorf("duplicate api key configured for client '%s'", k.Name)
		}
		seenKeys[k.Key] = true
	}

	for vt := range c.Parking.HourlyRates {
		if vt != models.VehicleTypeTwoWheeler && vt != models.VehicleTypeFourWheeler {
			return fmt.Errorf("unknown vehicle type in hourly_rates: %s", vt)
		}
	}

	return ValidateFloors(c.Floors)
}

// ValidateFloors checks the seed catalog for duplicate floor numbers
// and duplicate slot numbers within a floor.
func ValidateFloors(floors []FloorSeed) error {
	floorNumbers := make(map[int]bool, len(floors))
	for _, floor := range floors {
		if floorNumbers[floor.FloorNumber] {
			return fmt.Errorf("duplicate floor number: %d", floor.FloorNumber)
		}
		floorNumbers[floor.FloorNumber] = true

		slotNumbers := make(map[string]bool, len(floor.Slots))
		for _, slot := range floor.Slots {
			if slot.Number == "" {
				return fmt.Errorf("floor %d has a slot with an empty number", floor.FloorNumber)
			}
			if slot.VehicleType != models.VehicleTypeTwoWheeler && slot.VehicleType != models.VehicleTypeFourWheeler {
				return fmt.Errorf("slot %s on floor %d has unknown vehicle type: %s",
					slot.Number, floor.FloorNumber, slot.VehicleType)
			}
			if slotNumbers[slot.Number] {
				return fmt.Errorf("duplicate slot number on floor %d: %s", floor.FloorNumber, slot.Number)
			}
			slotNumbers[slot.Number] = true
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "parklot"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS <= 0 {
		c.API.RateLimit.RPS = models.DefaultRateLimitRPS
	}
	if c.API.RateLimit.Burst <= 0 {
		c.API.RateLimit.Burst = models.DefaultRateLimitBurst
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Parking.MaxDurationHours <= 0 {
		c.Parking.MaxDurationHours = models.MaxReservationDurationHours
	}
	if len(c.Parking.HourlyRates) == 0 {
		c.Parking.HourlyRates = models.DefaultHourlyRates
	}
	if c.Parking.CacheTTLSeconds <= 0 {
		c.Parking.CacheTTLSeconds = models.DefaultCacheTTL
	}
	if c.Redis.PoolSize <= 0 {
		c.Redis.PoolSize = 10
	}
	if c.Database.Backup.Schedule == "" {
		c.Database.Backup.Schedule = "24h"
	}
	if c.Database.Backup.RetentionDays <= 0 {
		c.Database.Backup.RetentionDays = 7
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
