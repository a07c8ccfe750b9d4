package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CHAT_CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Fatalf("expected :8000, got %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadServerAddr(t *testing.T) {
	cases := map[string]string{
		"9000":           ":9000",
		":9001":          ":9001",
		"127.0.0.1:9002": "127.0.0.1:9002",
	}
	for port, want := range cases {
		t.Setenv("PORT", port)
		cfg, err := loadServerConfig()
		if err != nil {
			t.Fatalf("PORT=%q: %v", port, err)
		}
		if cfg.Addr != want {
			t.Fatalf("PORT=%q: expected %q, got %q", port, want, cfg.Addr)
		}
	}
}

func TestLoadServerRejectsSpaces(t *testing.T) {
	t.Setenv("PORT", "80 80")
	if _, err := loadServerConfig(); err == nil {
		t.Fatalf("expected error for invalid PORT")
	}
}

func TestCORSOriginsList(t *testing.T) {
	t.Setenv("CHAT_CORS_ORIGINS", " http://a.test , ,http://b.test")
	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestAIConfig(t *testing.T) {
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "ep-test")
	t.Setenv("ARK_TEMPERATURE", "0.3")
	t.Setenv("ARK_MAX_TOKENS", "512")
	t.Setenv("AI_HISTORY_LIMIT", "-4")
	t.Setenv("AI_SYSTEM_PROMPT", "")

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig: %v", err)
	}
	if !cfg.Enabled() {
		t.Fatalf("expected AI config to be enabled")
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.MaxTokens == nil || *cfg.MaxTokens != 512 {
		t.Fatalf("unexpected max tokens: %v", cfg.MaxTokens)
	}
	if cfg.HistoryLimit != 0 {
		t.Fatalf("negative history limit should clamp to 0, got %d", cfg.HistoryLimit)
	}
	if cfg.SystemPrompt != defaultSystemPrompt {
		t.Fatalf("expected default system prompt")
	}
	if cfg.BaseURL != defaultArkBaseURL {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
}

func TestAIConfigDisabledWithoutCredentials(t *testing.T) {
	t.Setenv("ARK_API_KEY", "")
	t.Setenv("ARK_ACCESS_KEY", "ak")
	t.Setenv("ARK_SECRET_KEY", "")
	t.Setenv("Model", "ep-test")

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig: %v", err)
	}
	if cfg.Enabled() {
		t.Fatalf("AK without SK must not enable the model")
	}
}

func TestAIConfigInvalidNumbers(t *testing.T) {
	t.Setenv("ARK_TOP_P", "high")
	if _, err := loadAIConfig(); err == nil {
		t.Fatalf("expected error for invalid ARK_TOP_P")
	}
}

func TestLoadClient(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHAT_SERVER", "http://chat.test:9000")
	t.Setenv("CHAT_STORE_DRIVER", "BOLT")
	t.Setenv("CHAT_DATA_DIR", dir)
	t.Setenv("CHAT_ASK_TIMEOUT", "15")
	t.Setenv("CHAT_HIGHLIGHT", "false")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.Server != "http://chat.test:9000" || cfg.StoreDriver != "bolt" || cfg.DataDir != dir {
		t.Fatalf("unexpected client config: %+v", cfg)
	}
	if cfg.AskTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AskTimeout)
	}
	if cfg.Highlight {
		t.Fatalf("expected highlight disabled")
	}
}

func TestLoadClientDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CHAT_SERVER", "")
	t.Setenv("CHAT_STORE_DRIVER", "")
	t.Setenv("CHAT_DATA_DIR", "")
	t.Setenv("CHAT_ASK_TIMEOUT", "")
	t.Setenv("CHAT_HIGHLIGHT", "")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.Server != defaultChatServer || cfg.StoreDriver != "file" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DataDir != filepath.Join(home, defaultDataDirName) {
		t.Fatalf("unexpected data dir %q", cfg.DataDir)
	}
	if cfg.AskTimeout != 0 || !cfg.Highlight {
		t.Fatalf("unexpected timeout/highlight defaults: %+v", cfg)
	}
}

func TestLoadClientRejectsBadValues(t *testing.T) {
	t.Setenv("CHAT_ASK_TIMEOUT", "-1")
	if _, err := LoadClient(); err == nil {
		t.Fatalf("expected error for negative timeout")
	}

	t.Setenv("CHAT_ASK_TIMEOUT", "")
	t.Setenv("CHAT_HIGHLIGHT", "maybe")
	if _, err := LoadClient(); err == nil {
		t.Fatalf("expected error for invalid CHAT_HIGHLIGHT")
	}
}
