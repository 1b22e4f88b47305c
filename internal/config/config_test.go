package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WEBHOOKD_ENV", "dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Store != StoreSQLite || cfg.Database.Path != "data/webhookd" {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Replay.WindowMS != 300000 || cfg.Replay.Backend != ReplayBackendMemory {
		t.Fatalf("unexpected replay defaults: %+v", cfg.Replay)
	}
	if cfg.Sync.MaxRetries != 3 || cfg.Sync.BaseBackoffMS != 30000 || cfg.Sync.TimeoutMS != 10000 {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Server.MaxPayloadBytes != 1<<20 {
		t.Fatalf("got=%d want=%d", cfg.Server.MaxPayloadBytes, 1<<20)
	}
	if !cfg.IsLocalDevelopment() {
		t.Fatal("expected dev to be local development")
	}
}

func TestLoadReadsProviderSecrets(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET_SHOPIFY", "shp")
	t.Setenv("WEBHOOK_SECRET_HUBSPOT", " hs ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Webhooks.Secrets["shopify"] != "shp" || cfg.Webhooks.Secrets["hubspot"] != "hs" {
		t.Fatalf("unexpected secrets: %#v", cfg.Webhooks.Secrets)
	}
	if _, ok := cfg.Webhooks.Secrets["meta"]; ok {
		t.Fatal("expected meta secret to be absent")
	}
	missing := cfg.MissingSecrets()
	if len(missing) != 3 {
		t.Fatalf("got=%v want three missing providers", missing)
	}
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	t.Setenv("WEBHOOKD_SYNC_MAX_RETRIES", "99")
	t.Setenv("WEBHOOKD_MAX_PAYLOAD_BYTES", "12")
	t.Setenv("WEBHOOKD_OTEL_SAMPLING_RATIO", "4")
	t.Setenv("WEBHOOKD_RATE_LIMIT_RPS", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Sync.MaxRetries != 20 {
		t.Fatalf("got=%d want=20", cfg.Sync.MaxRetries)
	}
	if cfg.Server.MaxPayloadBytes != 1<<10 {
		t.Fatalf("got=%d want=%d", cfg.Server.MaxPayloadBytes, 1<<10)
	}
	if cfg.Observability.SamplingRatio != 1 {
		t.Fatalf("got=%v want=1", cfg.Observability.SamplingRatio)
	}
	if cfg.Server.RateLimitRPS != 0 {
		t.Fatalf("got=%v want=0", cfg.Server.RateLimitRPS)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string][2]string{
		"bad port":          {"WEBHOOKD_PORT", "70000"},
		"bad store":         {"WEBHOOKD_STORE", "postgres"},
		"bad replay":        {"WEBHOOKD_REPLAY_BACKEND", "memcached"},
		"redis without url": {"WEBHOOKD_REPLAY_BACKEND", "redis"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoadParsesOTLPHeadersAndMetricsConsole(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer common,x-org=abc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "x-trace=trace-only")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_HEADERS", "x-metric=metric-only")
	t.Setenv("WEBHOOKD_OTEL_METRICS_CONSOLE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Observability.Enabled {
		t.Fatal("expected observability enabled when console metrics is true")
	}
	if cfg.Observability.OTLPTraceHeaders["authorization"] != "Bearer common" {
		t.Fatalf("expected common header to be in trace headers, got %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if cfg.Observability.OTLPTraceHeaders["x-trace"] != "trace-only" {
		t.Fatalf("expected trace-specific header, got %#v", cfg.Observability.OTLPTraceHeaders)
	}
	if cfg.Observability.OTLPMetricHeaders["x-metric"] != "metric-only" {
		t.Fatalf("expected metric-specific header, got %#v", cfg.Observability.OTLPMetricHeaders)
	}
	if _, ok := cfg.Observability.OTLPMetricHeaders["x-trace"]; ok {
		t.Fatalf("did not expect trace header in metric headers: %#v", cfg.Observability.OTLPMetricHeaders)
	}
}

func TestLoadServiceVersionFallbacks(t *testing.T) {
	t.Setenv("OTEL_SERVICE_VERSION", "1.2.3")
	t.Setenv("OTEL_SERVICE_NAME", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Observability.ServiceVer != "1.2.3" {
		t.Fatalf("got=%s want=1.2.3", cfg.Observability.ServiceVer)
	}
	if cfg.Observability.ServiceName != "webhookd" {
		t.Fatalf("got=%s want=webhookd", cfg.Observability.ServiceName)
	}
}

func TestLoadSplitsDatabasePragmas(t *testing.T) {
	t.Setenv("WEBHOOKD_DB_PRAGMAS", "cache_size(-64000), ,mmap_size(268435456)")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := []string{"cache_size(-64000)", "mmap_size(268435456)"}
	if len(cfg.Database.Pragmas) != len(want) || cfg.Database.Pragmas[0] != want[0] || cfg.Database.Pragmas[1] != want[1] {
		t.Fatalf("got=%v want=%v", cfg.Database.Pragmas, want)
	}
}
