package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwillemsen/baanradar/internal/scheduler"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
db_path: /var/lib/baanradar/vacancies.db
http_timeout: 30s
schedule:
  scrape_times: ["09:00", "21:00"]
  sweep_times: ["08:30"]
brokers:
  - name: Yacht
    enabled: true
  - name: JobBird
    enabled: false
geocoder:
  api_key: "test-key"
skills:
  catalog:
    - Java
    - Python
rate_limit:
  min_delay: 3s
  broker_overrides:
    Yacht: 10s
retry:
  max_retries: 4
  base_delay: 2s
home:
  lon: 5.12
  lat: 52.09
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/var/lib/baanradar/vacancies.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if len(cfg.Schedule.ScrapeTimes) != 2 || cfg.Schedule.ScrapeTimes[0] != (scheduler.TimeOfDay{Hour: 9}) {
		t.Errorf("ScrapeTimes = %v", cfg.Schedule.ScrapeTimes)
	}
	if len(cfg.Schedule.SweepTimes) != 1 || cfg.Schedule.SweepTimes[0] != (scheduler.TimeOfDay{Hour: 8, Minute: 30}) {
		t.Errorf("SweepTimes = %v", cfg.Schedule.SweepTimes)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0].Name != "Yacht" || !cfg.Brokers[0].Enabled {
		t.Errorf("Brokers = %+v", cfg.Brokers)
	}
	if cfg.Geocoder.APIKey != "test-key" {
		t.Errorf("Geocoder.APIKey = %q", cfg.Geocoder.APIKey)
	}
	if len(cfg.Skills.Catalog) != 2 {
		t.Errorf("Skills.Catalog = %v", cfg.Skills.Catalog)
	}
	if got := cfg.RateLimit.MinDelayFor("Yacht"); got != 10*time.Second {
		t.Errorf("MinDelayFor(Yacht) = %v, want override 10s", got)
	}
	if got := cfg.RateLimit.MinDelayFor("JobBird"); got != 3*time.Second {
		t.Errorf("MinDelayFor(JobBird) = %v, want default 3s", got)
	}
	if cfg.Retry.MaxRetries != 4 || cfg.Retry.BaseDelay != 2*time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Home == nil || cfg.Home.Lon != 5.12 || cfg.Home.Lat != 52.09 {
		t.Errorf("Home = %+v", cfg.Home)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
brokers:
  - name: Yacht
    enabled: true
geocoder:
  api_key: "test-key"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "baanradar.db" {
		t.Errorf("DBPath = %q, want baanradar.db", cfg.DBPath)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	wantScrape := []scheduler.TimeOfDay{{Hour: 12}, {Hour: 18}}
	if len(cfg.Schedule.ScrapeTimes) != 2 || cfg.Schedule.ScrapeTimes[0] != wantScrape[0] || cfg.Schedule.ScrapeTimes[1] != wantScrape[1] {
		t.Errorf("ScrapeTimes = %v, want 12:00 and 18:00", cfg.Schedule.ScrapeTimes)
	}
	wantSweep := []scheduler.TimeOfDay{{Hour: 11, Minute: 30}, {Hour: 17, Minute: 30}}
	if len(cfg.Schedule.SweepTimes) != 2 || cfg.Schedule.SweepTimes[0] != wantSweep[0] || cfg.Schedule.SweepTimes[1] != wantSweep[1] {
		t.Errorf("SweepTimes = %v, want 11:30 and 17:30", cfg.Schedule.SweepTimes)
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseDelay != 5*time.Second {
		t.Errorf("Retry = %+v, want defaults", cfg.Retry)
	}
	if cfg.Home != nil {
		t.Errorf("Home = %+v, want nil when absent", cfg.Home)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("BAANRADAR_TEST_GEO_KEY", "expanded-key")
	path := writeConfig(t, `
brokers:
  - name: Yacht
    enabled: true
geocoder:
  api_key: "${BAANRADAR_TEST_GEO_KEY}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Geocoder.APIKey != "expanded-key" {
		t.Errorf("Geocoder.APIKey = %q, want env expansion", cfg.Geocoder.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "schedule: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_InvalidScheduleTime(t *testing.T) {
	path := writeConfig(t, `
schedule:
  scrape_times: ["25:00"]
brokers:
  - name: Yacht
    enabled: true
geocoder:
  api_key: "test-key"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid schedule time")
	}
}

func TestLoad_NoEnabledBrokers(t *testing.T) {
	path := writeConfig(t, `
brokers:
  - name: Yacht
    enabled: false
geocoder:
  api_key: "test-key"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error when no broker is enabled")
	}
}

func TestLoad_MissingGeocoderKey(t *testing.T) {
	path := writeConfig(t, `
brokers:
  - name: Yacht
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for missing geocoder key")
	}
}

func TestLoad_SlackRequiresWebhook(t *testing.T) {
	path := writeConfig(t, `
brokers:
  - name: Yacht
    enabled: true
geocoder:
  api_key: "test-key"
notification:
  type: slack
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for slack without webhook_url")
	}
}

func TestLoad_AIRequiresKeyAndModel(t *testing.T) {
	path := writeConfig(t, `
brokers:
  - name: Yacht
    enabled: true
geocoder:
  api_key: "test-key"
skills:
  catalog: [Java]
  ai:
    enabled: true
    model: gpt-4o-mini
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for ai without api_key")
	}
}
