package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fr0stylo/webhookd/internal/webhooks/signature"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"

	ReplayBackendMemory = "memory"
	ReplayBackendRedis  = "redis"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Webhooks      WebhooksConfig
	Replay        ReplayConfig
	Sync          SyncConfig
	DeadLetter    DeadLetterConfig
}

type ServerConfig struct {
	Port            int
	MaxPayloadBytes int64
	RateLimitRPS    float64
}

type DatabaseConfig struct {
	Store     string
	Path      string
	LogTiming bool
	// Pragmas are extra SQLite pragmas such as "cache_size(-64000)".
	Pragmas   []string
}

type LoggingConfig struct {
	Format string
	Level  string
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

type WebhooksConfig struct {
	// Secrets maps provider key to its HMAC secret. Providers without a secret fail closed.
	Secrets map[string]string
}

type ReplayConfig struct {
	WindowMS      int64
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type SyncConfig struct {
	BaseBackoffMS int64
	MaxRetries    int
	TimeoutMS     int64
}

type DeadLetterConfig struct {
	SinkURL string
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("webhookd_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("webhookd_port", 8080)
	v.SetDefault("webhookd_store", StoreSQLite)
	v.SetDefault("webhookd_db_path", "data/webhookd")
	v.SetDefault("webhookd_db_timing", false)
	v.SetDefault("webhookd_db_pragmas", "")
	v.SetDefault("webhookd_log_format", "text")
	v.SetDefault("webhookd_log_level", "info")
	v.SetDefault("webhookd_max_payload_bytes", 1<<20)
	v.SetDefault("webhookd_rate_limit_rps", 0)
	v.SetDefault("webhookd_replay_window_ms", 300000)
	v.SetDefault("webhookd_replay_backend", ReplayBackendMemory)
	v.SetDefault("webhookd_redis_addr", "")
	v.SetDefault("webhookd_redis_password", "")
	v.SetDefault("webhookd_redis_db", 0)
	v.SetDefault("webhookd_sync_base_backoff_ms", 30000)
	v.SetDefault("webhookd_sync_max_retries", 3)
	v.SetDefault("webhookd_sync_timeout_ms", 10000)
	v.SetDefault("webhookd_deadletter_sink_url", "")
	v.SetDefault("webhookd_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "webhookd")
	v.SetDefault("webhookd_version", "")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("webhookd_otel_sampling_ratio", 1.0)
	v.SetDefault("webhookd_otel_metrics_console", false)
	for _, key := range signature.Keys() {
		p, _ := signature.Lookup(key)
		v.SetDefault(strings.ToLower(p.SecretEnv), "")
	}

	env := resolveEnvironment(v)
	port := v.GetInt("webhookd_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid WEBHOOKD_PORT: %d", port)
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("webhookd_store")))
	if store != StoreSQLite && store != StoreMemory {
		return Config{}, fmt.Errorf("invalid WEBHOOKD_STORE: %q", store)
	}

	replayBackend := strings.ToLower(strings.TrimSpace(v.GetString("webhookd_replay_backend")))
	if replayBackend != ReplayBackendMemory && replayBackend != ReplayBackendRedis {
		return Config{}, fmt.Errorf("invalid WEBHOOKD_REPLAY_BACKEND: %q", replayBackend)
	}
	redisAddr := strings.TrimSpace(v.GetString("webhookd_redis_addr"))
	if replayBackend == ReplayBackendRedis && redisAddr == "" {
		return Config{}, fmt.Errorf("WEBHOOKD_REDIS_ADDR is required for the redis replay backend")
	}

	maxPayload := clampInt64(v.GetInt64("webhookd_max_payload_bytes"), 1<<10, 32<<20, 1<<20)
	replayWindow := clampInt64(v.GetInt64("webhookd_replay_window_ms"), 1000, 24*60*60*1000, 300000)
	baseBackoff := clampInt64(v.GetInt64("webhookd_sync_base_backoff_ms"), 1, 24*60*60*1000, 30000)
	syncTimeout := clampInt64(v.GetInt64("webhookd_sync_timeout_ms"), 100, 5*60*1000, 10000)

	maxRetries := v.GetInt("webhookd_sync_max_retries")
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > 20 {
		maxRetries = 20
	}

	rateLimit := v.GetFloat64("webhookd_rate_limit_rps")
	if rateLimit < 0 {
		rateLimit = 0
	}

	cfg := Config{
		Environment: env,
		Server: ServerConfig{
			Port:            port,
			MaxPayloadBytes: maxPayload,
			RateLimitRPS:    rateLimit,
		},
		Database: DatabaseConfig{
			Store:     store,
			Path:      strings.TrimSpace(v.GetString("webhookd_db_path")),
			LogTiming: v.GetBool("webhookd_db_timing"),
			Pragmas:   splitList(v.GetString("webhookd_db_pragmas")),
		},
		Logging: LoggingConfig{
			Format: strings.ToLower(strings.TrimSpace(v.GetString("webhookd_log_format"))),
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("webhookd_log_level"))),
		},
		Observability: loadObservability(v),
		Webhooks:      WebhooksConfig{Secrets: loadSecrets(v)},
		Replay: ReplayConfig{
			WindowMS:      replayWindow,
			Backend:       replayBackend,
			RedisAddr:     redisAddr,
			RedisPassword: v.GetString("webhookd_redis_password"),
			RedisDB:       v.GetInt("webhookd_redis_db"),
		},
		Sync: SyncConfig{
			BaseBackoffMS: baseBackoff,
			MaxRetries:    maxRetries,
			TimeoutMS:     syncTimeout,
		},
		DeadLetter: DeadLetterConfig{
			SinkURL: strings.TrimSpace(v.GetString("webhookd_deadletter_sink_url")),
		},
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/webhookd"
	}

	return cfg, nil
}

func loadSecrets(v *viper.Viper) map[string]string {
	out := make(map[string]string)
	for _, key := range signature.Keys() {
		p, _ := signature.Lookup(key)
		if secret := strings.TrimSpace(v.GetString(strings.ToLower(p.SecretEnv))); secret != "" {
			out[key] = secret
		}
	}
	return out
}

func loadObservability(v *viper.Viper) ObservabilityConfig {
	obs := ObservabilityConfig{
		OTLPEndpoint:      strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint")),
		OTLPTraceHeaders:  otlpHeaders(v.GetString("otel_exporter_otlp_headers"), v.GetString("otel_exporter_otlp_traces_headers")),
		OTLPMetricHeaders: otlpHeaders(v.GetString("otel_exporter_otlp_headers"), v.GetString("otel_exporter_otlp_metrics_headers")),
		ServiceName:       firstNonBlank(v.GetString("otel_service_name"), "webhookd"),
		ServiceVer:        firstNonBlank(v.GetString("webhookd_version"), v.GetString("otel_service_version"), "dev"),
		SamplingRatio:     clampFloat(v.GetFloat64("webhookd_otel_sampling_ratio"), 0, 1),
		MetricsConsole:    v.GetBool("webhookd_otel_metrics_console"),
	}
	obs.Enabled = v.GetBool("webhookd_otel_enabled") || obs.OTLPEndpoint != "" || obs.MetricsConsole
	return obs
}

// otlpHeaders parses the shared and signal-specific "k=v,k2=v2" header lists.
// Signal-specific entries win over shared ones with the same key.
func otlpHeaders(lists ...string) map[string]string {
	var out map[string]string
	for _, list := range lists {
		for _, pair := range strings.Split(list, ",") {
			key, value, _ := strings.Cut(pair, "=")
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if key == "" || value == "" {
				continue
			}
			if out == nil {
				out = make(map[string]string)
			}
			out[key] = value
		}
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

func clampFloat(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func clampInt64(value, lo, hi, fallback int64) int64 {
	if value <= 0 {
		return fallback
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

// MissingSecrets lists providers that will reject every delivery for lack of a secret.
func (c Config) MissingSecrets() []string {
	var missing []string
	for _, key := range signature.Keys() {
		if _, ok := c.Webhooks.Secrets[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func (c Config) ReplayWindow() time.Duration {
	return time.Duration(c.Replay.WindowMS) * time.Millisecond
}

func (c Config) SyncBaseBackoff() time.Duration {
	return time.Duration(c.Sync.BaseBackoffMS) * time.Millisecond
}

func (c Config) SyncTimeout() time.Duration {
	return time.Duration(c.Sync.TimeoutMS) * time.Millisecond
}

func resolveEnvironment(v *viper.Viper) string {
	return strings.ToLower(firstNonBlank(v.GetString("webhookd_env"), v.GetString("app_env"), v.GetString("go_env")))
}
