package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Database    DatabaseConfig
	FacilityAPI FacilityAPIConfig
	Routing     RoutingConfig
	Geolocation GeolocationConfig
	OTEL        OTELConfig
	Environment string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds the embedded database configuration
type DatabaseConfig struct {
	Path string
}

// FacilityAPIConfig holds the upstream facility/capacity API configuration
type FacilityAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RoutingConfig holds the routing service's tuning constants. The score
// weights are hand-tuned; keeping them here lets deployments adjust them
// without a code change and lets tests pin them explicitly.
type RoutingConfig struct {
	// Cache TTLs
	FacilitiesTTL time.Duration
	CapacityTTL   time.Duration
	NearbyTTL     time.Duration

	// Search radii in kilometers
	DefaultRadiusKm   float64
	EmergencyRadiusKm float64

	// Capacity fetch batching
	CapacityBatchSize int

	// Score weights
	DistanceMultiplier          float64
	EmergencyDistanceMultiplier float64
	DistancePenaltyCap          float64
	AvailabilityWeight          float64
	WaitTimeDivisor             float64
	WaitTimePenaltyCap          float64
	StatusPenaltyModerate       float64
	StatusPenaltyHigh           float64
	StatusPenaltyCritical       float64
	Level1TraumaBonus           float64
	Level2TraumaBonus           float64
	SpecialtyMatchBonus         float64
	RatingWeight                float64
}

// GeolocationConfig holds geolocation fallback configuration
type GeolocationConfig struct {
	DefaultLat float64
	DefaultLng float64
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "medroute.db"),
		},
		FacilityAPI: FacilityAPIConfig{
			BaseURL: getEnv("FACILITY_API_URL", "http://localhost:5000/api"),
			Timeout: time.Duration(getEnvAsInt("FACILITY_API_TIMEOUT_SECONDS", 8)) * time.Second,
		},
		Routing: DefaultRoutingConfig(),
		Geolocation: GeolocationConfig{
			// Johannesburg
			DefaultLat: getEnvAsFloat("GEO_DEFAULT_LAT", -26.2041),
			DefaultLng: getEnvAsFloat("GEO_DEFAULT_LNG", 28.0473),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "medroute-navigator"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Environment: getEnv("APP_ENV", "development"),
	}, nil
}

// DefaultRoutingConfig returns the routing constants as shipped.
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		FacilitiesTTL:               time.Duration(getEnvAsInt("ROUTING_FACILITIES_TTL_SECONDS", 300)) * time.Second,
		CapacityTTL:                 time.Duration(getEnvAsInt("ROUTING_CAPACITY_TTL_SECONDS", 30)) * time.Second,
		NearbyTTL:                   time.Duration(getEnvAsInt("ROUTING_NEARBY_TTL_SECONDS", 600)) * time.Second,
		DefaultRadiusKm:             getEnvAsFloat("ROUTING_DEFAULT_RADIUS_KM", 50),
		EmergencyRadiusKm:           getEnvAsFloat("ROUTING_EMERGENCY_RADIUS_KM", 25),
		CapacityBatchSize:           getEnvAsInt("ROUTING_CAPACITY_BATCH_SIZE", 5),
		DistanceMultiplier:          getEnvAsFloat("ROUTING_DISTANCE_MULTIPLIER", 3),
		EmergencyDistanceMultiplier: getEnvAsFloat("ROUTING_EMERGENCY_DISTANCE_MULTIPLIER", 8),
		DistancePenaltyCap:          30,
		AvailabilityWeight:          20,
		WaitTimeDivisor:             5,
		WaitTimePenaltyCap:          20,
		StatusPenaltyModerate:       -5,
		StatusPenaltyHigh:           -15,
		StatusPenaltyCritical:       -30,
		Level1TraumaBonus:           25,
		Level2TraumaBonus:           15,
		SpecialtyMatchBonus:         15,
		RatingWeight:                3,
	}
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ListenAddr returns the server listen address
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
