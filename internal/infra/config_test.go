package infra

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_TEXT_MODEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q", cfg.Port)
	}
	if cfg.GeminiTextModel != "gemini-3-flash-preview" {
		t.Fatalf("GeminiTextModel mismatch: got %q", cfg.GeminiTextModel)
	}
	if cfg.WelcomeGrant != 20 || cfg.CostPerRun != 10 {
		t.Fatalf("coin defaults mismatch: welcome=%d cost=%d", cfg.WelcomeGrant, cfg.CostPerRun)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when GEMINI_API_KEY is missing")
	}
}

func TestLoadConfigRejectsZeroCost(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("COST_PER_GENERATION", "0")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for non-positive generation cost")
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ALLOWED_ORIGINS", "https://studio.example.com, https://beta.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://beta.example.com" {
		t.Fatalf("AllowedOrigins mismatch: %#v", cfg.AllowedOrigins)
	}
}
