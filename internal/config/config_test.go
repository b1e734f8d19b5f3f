package config

import "testing"

func TestLoadIncludesRetrievalDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_FIELD_LIMIT", "")
	t.Setenv("RETRIEVAL_POOL_SIZE", "")
	t.Setenv("RETRIEVAL_SEARCH_LIMIT", "")
	t.Setenv("RETRIEVAL_TIMEOUT_MS", "")

	cfg := Load()
	if cfg.RetrievalFieldLimit != 5 {
		t.Fatalf("expected default field limit 5, got %d", cfg.RetrievalFieldLimit)
	}
	if cfg.RetrievalPoolSize != 5 {
		t.Fatalf("expected default pool size 5, got %d", cfg.RetrievalPoolSize)
	}
	if cfg.RetrievalSearchLimit != 3 {
		t.Fatalf("expected default search limit 3, got %d", cfg.RetrievalSearchLimit)
	}
	if cfg.RetrievalTimeoutMillis != 3000 {
		t.Fatalf("expected default timeout 3000ms, got %d", cfg.RetrievalTimeoutMillis)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_POOL_SIZE", "3")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("CHAT_MAX_TOOL_ITERATIONS", "8")
	t.Setenv("NATS_SUBJECT", "datasets.reload")

	cfg := Load()
	if cfg.RetrievalPoolSize != 3 {
		t.Fatalf("expected pool size 3, got %d", cfg.RetrievalPoolSize)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.ChatMaxToolIterations != 8 {
		t.Fatalf("expected 8 tool iterations, got %d", cfg.ChatMaxToolIterations)
	}
	if cfg.NATSSubject != "datasets.reload" {
		t.Fatalf("expected subject override, got %q", cfg.NATSSubject)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("RETRIEVAL_FIELD_LIMIT", "many")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.RetrievalFieldLimit != 5 {
		t.Fatalf("malformed int must fall back to default, got %d", cfg.RetrievalFieldLimit)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("malformed float must fall back to default, got %v", cfg.APIRateLimitRPS)
	}
}
