package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
	"github.com/vijay-prabhu/inboxdomains/internal/config"
	"github.com/vijay-prabhu/inboxdomains/internal/fetcher"
)

func TestDefaultConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}

	want := config.Default()
	if cfg.Fetch != want.Fetch {
		t.Errorf("fetch section = %+v, want %+v", cfg.Fetch, want.Fetch)
	}
	if cfg.Cache.Backend != want.Cache.Backend {
		t.Errorf("cache backend = %q, want %q", cfg.Cache.Backend, want.Cache.Backend)
	}
	if cfg.Schedule.Cron != want.Schedule.Cron {
		t.Errorf("schedule = %q, want %q", cfg.Schedule.Cron, want.Schedule.Cron)
	}
}

func TestSummaryOf(t *testing.T) {
	agg := aggregate.New()
	agg.Total = 12
	r := &fetcher.Result{Aggregate: agg, FetchedThisBatch: 12, Skipped: 2, RunID: "run", Exhausted: true}

	s := summaryOf(r)
	if s.Total != 12 || s.FetchedThisBatch != 12 || s.Skipped != 2 || s.RunID != "run" || !s.Exhausted {
		t.Errorf("summaryOf() = %+v", s)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, ""},
		{45 * time.Second, "45s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 5*time.Second, "2m5s"},
		{90 * time.Minute, "1h30m"},
	}

	for _, tt := range tests {
		if got := FormatETA(tt.d); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPhaseColor(t *testing.T) {
	phases := []fetcher.ProgressPhase{
		fetcher.PhaseListing, fetcher.PhaseFetching, fetcher.PhaseMerging, fetcher.PhaseSaving,
	}
	for _, p := range phases {
		if PhaseColor(string(p)) == ColorWhite {
			t.Errorf("phase %q has no color", p)
		}
	}
}

func TestTerminalColorDisabled(t *testing.T) {
	term := &Terminal{}
	if got := term.Color(ColorBlue, "x"); got != "x" {
		t.Errorf("Color() = %q, want plain text", got)
	}
	if got := term.Spinner(); got != "" {
		t.Errorf("Spinner() = %q, want empty outside a terminal", got)
	}
}
