package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "DATABASE_DRIVER", "DATABASE_PATH", "AI_PROVIDER", "INSIGHT_RATE_PER_MINUTE", "METRICS_ENABLED", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.DatabaseDSN() != "healthup.db" {
		t.Fatalf("unexpected database config: %s %s", cfg.DatabaseDriver, cfg.DatabaseDSN())
	}
	if cfg.AIProvider != "openai" {
		t.Fatalf("unexpected provider %q", cfg.AIProvider)
	}
	if cfg.InsightRatePerMinute != 6 {
		t.Fatalf("unexpected insight rate %d", cfg.InsightRatePerMinute)
	}
	if !cfg.MetricsEnabled {
		t.Fatal("metrics should default to enabled")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 default origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/healthup")
	t.Setenv("INSIGHT_RATE_PER_MINUTE", "not-a-number")
	t.Setenv("METRICS_ENABLED", "off")
	t.Setenv("CORS_ORIGINS", " https://app.example.com , ,https://b.example.com")

	cfg := Load()

	if cfg.ListenAddr != ":9000" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "postgres" || cfg.DatabaseDSN() != "postgres://localhost/healthup" {
		t.Fatalf("unexpected database config: %s %s", cfg.DatabaseDriver, cfg.DatabaseDSN())
	}
	if cfg.InsightRatePerMinute != 6 {
		t.Fatalf("invalid rate should fall back, got %d", cfg.InsightRatePerMinute)
	}
	if cfg.MetricsEnabled {
		t.Fatal("metrics should be disabled")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://app.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}
