package config

import (
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig  `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        int           `yaml:"port" env:"SERVER_PORT" envDefault:"8080"`
	Host        string        `yaml:"host" env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host" env:"DATABASE_HOST" envDefault:"localhost"`
	Port            int           `yaml:"port" env:"DATABASE_PORT" envDefault:"5432"`
	Name            string        `yaml:"name" env:"DATABASE_NAME" envDefault:"iam"`
	User            string        `yaml:"user" env:"DATABASE_USER" envDefault:"iam_user"`
	Password        string        `yaml:"password" env:"DATABASE_PASSWORD"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
	SSLMode         string        `yaml:"ssl_mode" env:"DATABASE_SSL_MODE" envDefault:"disable"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string `yaml:"host" env:"REDIS_HOST" envDefault:"localhost"`
	Port         int    `yaml:"port" env:"REDIS_PORT" envDefault:"6379"`
	Password     string `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int    `yaml:"db" env:"REDIS_DB" envDefault:"0"`
	PoolSize     int    `yaml:"pool_size" env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	EncryptionKey string         `yaml:"encryption_key" env:"ENCRYPTION_KEY"` // 32-byte key for AES-256
	TOTPIssuer    string         `yaml:"totp_issuer" env:"TOTP_ISSUER" envDefault:"ARauth Identity"`
	JWT           JWTConfig      `yaml:"jwt"`
	Password      PasswordConfig `yaml:"password"`
	MFA           MFAConfig      `yaml:"mfa"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
	OIDC          []OIDCIssuerConfig `yaml:"oidc_issuers"`
}

// OIDCIssuerConfig names one trusted external OIDC issuer accepted by the
// inbound auth chain (spec.md §4.4 provider #2). JWKSURI is resolved once
// at startup via discovery if left blank.
type OIDCIssuerConfig struct {
	IssuerURL    string        `yaml:"issuer_url"`
	Audience     string        `yaml:"audience"`
	JWKSURI      string        `yaml:"jwks_uri"`
	JWKSCacheTTL time.Duration `yaml:"jwks_cache_ttl" envDefault:"1h"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Issuer          string        `yaml:"issuer" env:"JWT_ISSUER" envDefault:"https://iam.example.com"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"JWT_REFRESH_TOKEN_TTL" envDefault:"30d"`
	IDTokenTTL      time.Duration `yaml:"id_token_ttl" env:"JWT_ID_TOKEN_TTL" envDefault:"1h"`
	SigningKeyPath  string        `yaml:"signing_key_path" env:"JWT_SIGNING_KEY_PATH"`
	Secret          string        `yaml:"secret" env:"JWT_SECRET"`
	RememberMe      RememberMeConfig `yaml:"remember_me"`
	TokenRotation   bool          `yaml:"token_rotation" env:"JWT_TOKEN_ROTATION" envDefault:"true"`
	RequireMFAForExtendedSessions bool `yaml:"require_mfa_for_extended_sessions" env:"JWT_REQUIRE_MFA_EXTENDED" envDefault:"false"`
}

// RememberMeConfig holds Remember Me configuration
type RememberMeConfig struct {
	Enabled          bool          `yaml:"enabled" env:"JWT_REMEMBER_ME_ENABLED" envDefault:"true"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"JWT_REMEMBER_ME_REFRESH_TTL" envDefault:"90d"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"JWT_REMEMBER_ME_ACCESS_TTL" envDefault:"60m"`
}

// PasswordConfig holds password policy configuration
type PasswordConfig struct {
	MinLength      int  `yaml:"min_length" env:"PASSWORD_MIN_LENGTH" envDefault:"12"`
	RequireUpper   bool `yaml:"require_uppercase" env:"PASSWORD_REQUIRE_UPPERCASE" envDefault:"true"`
	RequireLower   bool `yaml:"require_lowercase" env:"PASSWORD_REQUIRE_LOWERCASE" envDefault:"true"`
	RequireNumber  bool `yaml:"require_number" env:"PASSWORD_REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial bool `yaml:"require_special" env:"PASSWORD_REQUIRE_SPECIAL" envDefault:"true"`
}

// MFAConfig holds MFA configuration
type MFAConfig struct {
	Issuer string `yaml:"issuer" env:"MFA_ISSUER" envDefault:"ARauth Identity"`
	Period int    `yaml:"period" env:"MFA_PERIOD" envDefault:"30"`
	Digits int    `yaml:"digits" env:"MFA_DIGITS" envDefault:"6"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	LoginAttempts int           `yaml:"login_attempts" env:"RATE_LIMIT_LOGIN_ATTEMPTS" envDefault:"5"`
	LoginWindow   time.Duration `yaml:"login_window" env:"RATE_LIMIT_LOGIN_WINDOW" envDefault:"1m"`
	MFAAttempts   int           `yaml:"mfa_attempts" env:"RATE_LIMIT_MFA_ATTEMPTS" envDefault:"5"`
	MFAWindow     time.Duration `yaml:"mfa_window" env:"RATE_LIMIT_MFA_WINDOW" envDefault:"5m"`
	APIRequests   int           `yaml:"api_requests" env:"RATE_LIMIT_API_REQUESTS" envDefault:"100"`
	APIWindow     time.Duration `yaml:"api_window" env:"RATE_LIMIT_API_WINDOW" envDefault:"1m"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" env:"LOG_LEVEL" envDefault:"info"`
	Format    string `yaml:"format" env:"LOG_FORMAT" envDefault:"json"`
	Output    string `yaml:"output" env:"LOG_OUTPUT" envDefault:"stdout"`
	FilePath  string `yaml:"file_path" env:"LOG_FILE_PATH" envDefault:"/var/log/iam/api.log"`
	MaxSize   int    `yaml:"max_size" env:"LOG_MAX_SIZE" envDefault:"100"`
	MaxBackups int   `yaml:"max_backups" env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge    int    `yaml:"max_age" env:"LOG_MAX_AGE" envDefault:"30"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `yaml:"path" env:"METRICS_PATH" envDefault:"/metrics"`
	Port    int    `yaml:"port" env:"METRICS_PORT" envDefault:"9090"`
}

// BootstrapConfig holds the first-run master-user seeding configuration.
type BootstrapConfig struct {
	Force      bool             `yaml:"force" env:"BOOTSTRAP_FORCE" envDefault:"false"`
	MasterUser BootstrapUserSpec `yaml:"master_user"`
}

// BootstrapUserSpec describes the master user created on bootstrap.
type BootstrapUserSpec struct {
	Username  string `yaml:"username" env:"BOOTSTRAP_USERNAME" envDefault:"admin"`
	Email     string `yaml:"email" env:"BOOTSTRAP_EMAIL"`
	Password  string `yaml:"password" env:"BOOTSTRAP_PASSWORD"`
	FirstName string `yaml:"first_name" env:"BOOTSTRAP_FIRST_NAME" envDefault:"System"`
	LastName  string `yaml:"last_name" env:"BOOTSTRAP_LAST_NAME" envDefault:"Administrator"`
}

// GatewayConfig holds the Gateway Router's registry refresh and health
// probe tuning.
type GatewayConfig struct {
	// RegistryPath points at the YAML document listing Services/Routes
	// (gateway/registry.Document) loaded at startup and on each refresh
	// tick.
	RegistryPath            string        `yaml:"registry_path" env:"GATEWAY_REGISTRY_PATH" envDefault:"./registry.yaml"`
	RegistryRefreshInterval time.Duration `yaml:"registry_refresh_interval" env:"GATEWAY_REGISTRY_REFRESH_INTERVAL" envDefault:"30s"`
	ProxyTimeout            time.Duration `yaml:"proxy_timeout" env:"GATEWAY_PROXY_TIMEOUT" envDefault:"30s"`
	HealthCheckInterval     time.Duration `yaml:"health_check_interval" env:"GATEWAY_HEALTH_CHECK_INTERVAL" envDefault:"15s"`
	HealthCheckTimeout      time.Duration `yaml:"health_check_timeout" env:"GATEWAY_HEALTH_CHECK_TIMEOUT" envDefault:"5s"`
	MaxInstances            int           `yaml:"max_instances" env:"GATEWAY_MAX_INSTANCES" envDefault:"8"`
	ProbeRatePerSecond      float64       `yaml:"probe_rate_per_second" env:"GATEWAY_PROBE_RATE_PER_SECOND" envDefault:"10"`
	MaxRetryCount           int           `yaml:"max_retry_count" env:"GATEWAY_MAX_RETRY_COUNT" envDefault:"3"`
}

// WebhookConfig holds the Webhook Dispatcher's worker pool and retry
// backoff tuning. Defaults match the backoff algorithm's stated constants:
// base=1s, cap=5min, max_attempts=10.
type WebhookConfig struct {
	Workers       int           `yaml:"workers" env:"WEBHOOK_WORKERS" envDefault:"4"`
	BaseBackoff   time.Duration `yaml:"base_backoff" env:"WEBHOOK_BASE_BACKOFF" envDefault:"1s"`
	CapBackoff    time.Duration `yaml:"cap_backoff" env:"WEBHOOK_CAP_BACKOFF" envDefault:"5m"`
	MaxAttempts   int           `yaml:"max_attempts" env:"WEBHOOK_MAX_ATTEMPTS" envDefault:"10"`
	LeaseDuration time.Duration `yaml:"lease_duration" env:"WEBHOOK_LEASE_DURATION" envDefault:"1m"`
	SendRateLimit float64       `yaml:"send_rate_limit" env:"WEBHOOK_SEND_RATE_LIMIT" envDefault:"5"`
	PollInterval  time.Duration `yaml:"poll_interval" env:"WEBHOOK_POLL_INTERVAL" envDefault:"2s"`
}

