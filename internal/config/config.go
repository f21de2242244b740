package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Intake       IntakeConfig
	Notification NotificationConfig
	Routing      RoutingConfig
	Checklist    ChecklistConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for dashboard staff.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// IntakeConfig guards the feed endpoints used by the intake bot and
// the submission/roster sync jobs.
type IntakeConfig struct {
	Token string
}

// NotificationConfig configures outbound notification delivery.
type NotificationConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// RoutingConfig holds the type → candidate-assignee rule table.
type RoutingConfig struct {
	Rules map[domain.TicketType][]string
}

// ChecklistConfig holds the completion engine's static reference data:
// slot order, whitelisted outlets, reporting time zone and refresh
// cadence.
type ChecklistConfig struct {
	Slots                  []string
	Outlets                []OutletEntry
	Timezone               string
	RefreshIntervalMinutes int
	CacheTTLMinutes        int
}

// OutletEntry is one whitelist row parsed from OUTLET_WHITELIST.
type OutletEntry struct {
	Code string
	Name string
	Type string
}

// Load reads configuration from environment variables, applying
// defaults where possible. Malformed rule tables or whitelist entries
// fail here rather than surfacing mid-request.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	outlets, err := parseOutletWhitelist(getEnv("OUTLET_WHITELIST", defaultWhitelist))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "outlet-ops"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Intake: IntakeConfig{
			Token: getEnv("INTAKE_TOKEN", ""),
		},
		Notification: NotificationConfig{
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 5),
		},
		Routing: RoutingConfig{
			Rules: map[domain.TicketType][]string{
				domain.TypeRepairAndMaintenance: splitList(getEnv("ROUTING_REPAIR_AND_MAINTENANCE", "Nishat")),
				domain.TypeDifficultyInOrder:    splitList(getEnv("ROUTING_DIFFICULTY_IN_ORDER", "")),
				domain.TypeStockItems:           splitList(getEnv("ROUTING_STOCK_ITEMS", "Nishat,Ajay")),
				domain.TypeHousekeeping:         splitList(getEnv("ROUTING_HOUSEKEEPING", "Kim")),
				domain.TypeOthers:               splitList(getEnv("ROUTING_OTHERS", "Kim")),
			},
		},
		Checklist: ChecklistConfig{
			Slots:                  splitList(getEnv("CHECKLIST_SLOTS", "Morning,Mid Day,Closing")),
			Outlets:                outlets,
			Timezone:               getEnv("REPORT_TIMEZONE", "Asia/Kolkata"),
			RefreshIntervalMinutes: getEnvAsInt("COMPLETION_REFRESH_MINUTES", 5),
			CacheTTLMinutes:        getEnvAsInt("COMPLETION_CACHE_TTL_MINUTES", 120),
		},
	}

	return cfg, nil
}

const defaultWhitelist = "BLN|Bellandur|DINE_IN,IND|Indiranagar|DINE_IN,KOR|Koramangala|CLOUD"

// parseOutletWhitelist parses "CODE|Name|Type" entries separated by commas.
func parseOutletWhitelist(raw string) ([]OutletEntry, error) {
	var outlets []OutletEntry
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, "|")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid OUTLET_WHITELIST entry %q (want CODE|Name|Type)", part)
		}
		outlets = append(outlets, OutletEntry{
			Code: strings.TrimSpace(fields[0]),
			Name: strings.TrimSpace(fields[1]),
			Type: strings.TrimSpace(fields[2]),
		})
	}
	if len(outlets) == 0 {
		return nil, fmt.Errorf("OUTLET_WHITELIST is empty")
	}
	return outlets, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the reporting time zone.
func (c ChecklistConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// RefreshInterval returns the completion refresh cadence.
func (c ChecklistConfig) RefreshInterval() time.Duration {
	if c.RefreshIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

// CacheTTL returns how long cached completion snapshots stay usable.
func (c ChecklistConfig) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
