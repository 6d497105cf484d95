package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig wraps every start-up configuration failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config centralises runtime configuration.
type Config struct {
	HTTPPort               string
	DatabaseURL            string
	JWTSecret              string
	JWTIssuer              string
	JWTExpiry              time.Duration
	AllowedOrigins         []string
	TrustedProxies         []netip.Prefix
	ReadTimeoutSec         int
	WriteTimeoutSec        int
	IdleTimeoutSec         int
	LogLevel               string
	MetricsEnabled         bool
	AuthRateLimitPerMinute int
	PasswordMinLength      int
	ShutdownTimeout        time.Duration
}

// Load reads configuration from the environment, after applying an optional
// .env file, and fails fast on missing required values.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	httpPort := getEnv("HTTP_PORT", "")
	if httpPort == "" {
		httpPort = getEnv("PORT", "8000")
	}

	trustedProxies, err := parseTrustedProxies(getEnv("TRUSTED_PROXIES", ""))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:               httpPort,
		DatabaseURL:            resolveDatabaseURL(),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTIssuer:              getEnv("JWT_ISSUER", "todolist"),
		JWTExpiry:              getDurationEnv("JWT_EXPIRY", 600*time.Second),
		AllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		TrustedProxies:         trustedProxies,
		ReadTimeoutSec:         getIntEnv("HTTP_READ_TIMEOUT", 15),
		WriteTimeoutSec:        getIntEnv("HTTP_WRITE_TIMEOUT", 15),
		IdleTimeoutSec:         getIntEnv("HTTP_IDLE_TIMEOUT", 60),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:         getBoolEnv("METRICS_ENABLED", true),
		AuthRateLimitPerMinute: getIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		PasswordMinLength:      getIntEnv("PASSWORD_MIN_LENGTH", 6),
		ShutdownTimeout:        getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first missing or out-of-range setting.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: database configuration missing: provide DATABASE_URL or PG* env vars", ErrInvalidConfig)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrInvalidConfig)
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("%w: JWT_EXPIRY must be positive", ErrInvalidConfig)
	}
	if c.PasswordMinLength <= 0 {
		return fmt.Errorf("%w: PASSWORD_MIN_LENGTH must be positive", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

// parseTrustedProxies reads a comma separated list of IPs or CIDRs whose
// forwarding headers are honoured. An empty list trusts no proxy.
func parseTrustedProxies(value string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			prefix, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("%w: TRUSTED_PROXIES entry %q: %w", ErrInvalidConfig, part, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("%w: TRUSTED_PROXIES entry %q: %w", ErrInvalidConfig, part, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

// resolveDatabaseURL prefers an explicit URL and otherwise assembles one from
// the libpq style PG* variables.
func resolveDatabaseURL() string {
	for _, key := range []string{"DATABASE_URL", "POSTGRES_URL", "PGURL"} {
		if url := coerceDatabaseURL(os.Getenv(key)); url != "" {
			return url
		}
	}

	if path := os.Getenv("DATABASE_URL_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if url := coerceDatabaseURL(string(data)); url != "" {
				return url
			}
		}
	}

	host := firstNonEmpty(os.Getenv("PGHOST"), os.Getenv("POSTGRES_HOST"))
	user := firstNonEmpty(os.Getenv("PGUSER"), os.Getenv("POSTGRES_USER"))
	if host == "" || user == "" {
		return ""
	}
	password := firstNonEmpty(os.Getenv("PGPASSWORD"), os.Getenv("POSTGRES_PASSWORD"))
	database := firstNonEmpty(os.Getenv("PGDATABASE"), os.Getenv("POSTGRES_DB"), "todo")
	port := firstNonEmpty(os.Getenv("PGPORT"), os.Getenv("POSTGRES_PORT"), "5432")
	sslMode := firstNonEmpty(os.Getenv("PGSSLMODE"), "disable")

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + database,
		User:   neturl.User(user),
	}
	if password != "" {
		dsn.User = neturl.UserPassword(user, password)
	}
	query := dsn.Query()
	query.Set("sslmode", sslMode)
	dsn.RawQuery = query.Encode()

	return dsn.String()
}

func coerceDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"):
		return raw
	case strings.HasPrefix(raw, "postgresql://"):
		return "postgres://" + strings.TrimPrefix(raw, "postgresql://")
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
