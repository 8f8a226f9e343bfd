package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	GatewayPostgREST = "postgrest"
	GatewayPostgres  = "postgres"
	GatewayMemory    = "memory"
)

const (
	AuthSupabase = "supabase"
	AuthStatic   = "static"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                    string
	ServiceName               string
	ServiceVersion            string
	HTTPAddr                  string
	ReadTimeout               time.Duration
	WriteTimeout              time.Duration
	CORSAllowedOrigins        []string
	LogLevel                  logging.Level
	GatewayDriver             string
	AuthDriver                string
	StaticAuthTokens          map[string]string
	DemoCommissionerID        string
	SupabaseURL               string
	SupabaseAnonKey           string
	SupabaseTimeout           time.Duration
	SupabaseCircuitEnabled    bool
	SupabaseCircuitFailures   int
	SupabaseCircuitOpenFor    time.Duration
	SupabaseCircuitHalfOpen   int
	DBURL                     string
	DBDisablePreparedBinary   bool
	AuthCacheTTL              time.Duration
	AuthCacheMaxEntries       int
	ActiveLeagueCacheTTL      time.Duration
	ActiveLeagueCacheMaxItems int
	ContestantCacheTTL        time.Duration
	UptraceEnabled            bool
	UptraceDSN                string
	UptraceLogsEnabled        bool
	PyroscopeEnabled          bool
	PyroscopeServerAddress    string
	PyroscopeAppName          string
	PyroscopeAuthToken        string
	PyroscopeUploadRate       time.Duration
	PprofEnabled              bool
	PprofAddr                 string
}

// LoadEnvFile merges KEY=value pairs from ENV_FILE (default .env) into the
// process environment. Variables that are already set win. A missing
// default file is not an error.
func LoadEnvFile() error {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("SERVICE_NAME", "fantasy-draft-api"),
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		DemoCommissionerID: strings.TrimSpace(getEnv("DEMO_COMMISSIONER_ID", "")),
		SupabaseURL:        strings.TrimRight(strings.TrimSpace(getEnv("SUPABASE_URL", "")), "/"),
		SupabaseAnonKey:    strings.TrimSpace(getEnv("SUPABASE_ANON_KEY", "")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeAuthToken: strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PprofAddr:          strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	cfg.GatewayDriver = strings.ToLower(strings.TrimSpace(getEnv("GATEWAY_DRIVER", GatewayPostgREST)))
	switch cfg.GatewayDriver {
	case GatewayPostgREST:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
			return Config{}, fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required when GATEWAY_DRIVER=%s", GatewayPostgREST)
		}
	case GatewayPostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when GATEWAY_DRIVER=%s", GatewayPostgres)
		}
	case GatewayMemory:
		if appEnv == EnvProd {
			return Config{}, fmt.Errorf("GATEWAY_DRIVER=%s is not allowed when APP_ENV=%s", GatewayMemory, EnvProd)
		}
	default:
		return Config{}, fmt.Errorf("invalid GATEWAY_DRIVER %q: valid values are %s, %s, %s", cfg.GatewayDriver, GatewayPostgREST, GatewayPostgres, GatewayMemory)
	}

	cfg.AuthDriver = strings.ToLower(strings.TrimSpace(getEnv("AUTH_DRIVER", AuthSupabase)))
	switch cfg.AuthDriver {
	case AuthSupabase:
		if cfg.SupabaseURL == "" {
			return Config{}, fmt.Errorf("SUPABASE_URL is required when AUTH_DRIVER=%s", AuthSupabase)
		}
	case AuthStatic:
		if appEnv == EnvProd {
			return Config{}, fmt.Errorf("AUTH_DRIVER=%s is not allowed when APP_ENV=%s", AuthStatic, EnvProd)
		}
		tokens, err := parsePairs(getEnv("STATIC_AUTH_TOKENS", ""))
		if err != nil {
			return Config{}, fmt.Errorf("parse STATIC_AUTH_TOKENS: %w", err)
		}
		if len(tokens) == 0 {
			return Config{}, fmt.Errorf("STATIC_AUTH_TOKENS is required when AUTH_DRIVER=%s", AuthStatic)
		}
		cfg.StaticAuthTokens = tokens
	default:
		return Config{}, fmt.Errorf("invalid AUTH_DRIVER %q: valid values are %s, %s", cfg.AuthDriver, AuthSupabase, AuthStatic)
	}

	if cfg.SupabaseTimeout, err = getEnvAsDuration("SUPABASE_TIMEOUT", "5s"); err != nil {
		return Config{}, err
	}
	if cfg.SupabaseCircuitEnabled, err = getEnvAsBool("SUPABASE_CIRCUIT_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.SupabaseCircuitFailures, err = getEnvAsInt("SUPABASE_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.SupabaseCircuitFailures < 1 {
		return Config{}, fmt.Errorf("SUPABASE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.SupabaseCircuitOpenFor, err = getEnvAsDuration("SUPABASE_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.SupabaseCircuitHalfOpen, err = getEnvAsInt("SUPABASE_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.SupabaseCircuitHalfOpen < 1 {
		return Config{}, fmt.Errorf("SUPABASE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY", true); err != nil {
		return Config{}, err
	}

	if cfg.AuthCacheTTL, err = getEnvAsDuration("AUTH_CACHE_TTL", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.AuthCacheMaxEntries, err = getEnvAsInt("AUTH_CACHE_MAX_ENTRIES", 10000); err != nil {
		return Config{}, fmt.Errorf("parse AUTH_CACHE_MAX_ENTRIES: %w", err)
	}
	if cfg.AuthCacheMaxEntries < 0 {
		return Config{}, fmt.Errorf("AUTH_CACHE_MAX_ENTRIES must be >= 0")
	}
	if cfg.ActiveLeagueCacheTTL, err = getEnvAsDuration("ACTIVE_LEAGUE_CACHE_TTL", "24h"); err != nil {
		return Config{}, err
	}
	if cfg.ActiveLeagueCacheMaxItems, err = getEnvAsInt("ACTIVE_LEAGUE_CACHE_MAX_ENTRIES", 50000); err != nil {
		return Config{}, fmt.Errorf("parse ACTIVE_LEAGUE_CACHE_MAX_ENTRIES: %w", err)
	}
	if cfg.ContestantCacheTTL, err = getEnvAsDuration("CONTESTANT_CACHE_TTL", "5m"); err != nil {
		return Config{}, err
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", true); err != nil {
		return Config{}, err
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration rejects zero and negative values.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parsePairs reads "token:user_id,token2:user_id2".
func parsePairs(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid item %q, expected token:user_id", item)
		}

		key := strings.TrimSpace(segments[0])
		value := strings.TrimSpace(segments[1])
		if key == "" || value == "" {
			return nil, fmt.Errorf("empty token or user id in item %q", item)
		}
		out[key] = value
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
