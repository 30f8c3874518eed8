package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ADMIN_PASS", "secret")
	t.Setenv("PORT", "")
	t.Setenv("DAILY_LIMIT", "")
	t.Setenv("SETTLE_DELAY_SECONDS", "")
	t.Setenv("POLL_INTERVAL_SECONDS", "")
	t.Setenv("RENDER_BUDGET_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DailyLimit != 3 {
		t.Fatalf("DailyLimit = %d, want 3", cfg.DailyLimit)
	}
	if cfg.SettleDelay != 7*time.Second {
		t.Fatalf("SettleDelay = %v, want 7s", cfg.SettleDelay)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if cfg.RenderBudget != 300*time.Second {
		t.Fatalf("RenderBudget = %v, want 300s", cfg.RenderBudget)
	}
	if cfg.NoteGPTBaseURL != "https://notegpt.io/api/v2" {
		t.Fatalf("NoteGPTBaseURL = %q", cfg.NoteGPTBaseURL)
	}
}

func TestLoadConfigRequiresAdminPass(t *testing.T) {
	t.Setenv("ADMIN_PASS", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig succeeded without ADMIN_PASS")
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("ADMIN_PASS", "secret")
	t.Setenv("DAILY_LIMIT", "5")
	t.Setenv("RENDER_BUDGET_SECONDS", "120")
	t.Setenv("JOB_RETENTION_MINUTES", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DailyLimit != 5 {
		t.Fatalf("DailyLimit = %d, want 5", cfg.DailyLimit)
	}
	if cfg.RenderBudget != 2*time.Minute {
		t.Fatalf("RenderBudget = %v, want 2m", cfg.RenderBudget)
	}
	if cfg.JobRetention != 0 {
		t.Fatalf("JobRetention = %v, want 0 (keep forever)", cfg.JobRetention)
	}
}

func TestLoadConfigRejectsNonPositiveIntervals(t *testing.T) {
	t.Setenv("ADMIN_PASS", "secret")
	t.Setenv("POLL_INTERVAL_SECONDS", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig accepted zero poll interval")
	}
}
