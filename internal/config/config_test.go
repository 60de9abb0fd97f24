package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentActivation/internal/validation"
)

func TestDecodeKeepsDefaultsForAbsentKeys(t *testing.T) {
	t.Parallel()

	cfg, err := decode([]byte(`
destination:
  platform: webhook
  webhook:
    url: https://hooks.example.com/campaigns
providers:
  - name: ollama
    ratePerMinute: 30
  - name: stub
scheduler:
  activations:
    - cron: "0 9 * * 1"
      entryId: entry-1
      listId: ML_DEMO_001
      enrichmentEnabled: false
    - cron: "0 10 * * *"
      entryId: entry-2
      listId: ML_DEMO_002
`))
	require.NoError(t, err)

	assert.Equal(t, "webhook", cfg.Destination.Platform)
	assert.Equal(t, 15*time.Second, cfg.Destination.Timeout, "absent keys keep defaults")
	assert.Equal(t, ":8080", cfg.Server.Addr)
	require.Len(t, cfg.Providers, 2, "a configured chain replaces the default chain")
	assert.Equal(t, "ollama", cfg.Providers[0].Name)
	assert.Equal(t, validation.DefaultRules(), cfg.Validation)

	require.Len(t, cfg.Scheduler.Activations, 2)
	assert.False(t, cfg.Scheduler.Activations[0].Enrichment())
	assert.True(t, cfg.Scheduler.Activations[1].Enrichment())
}

func TestDecodeRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := decode([]byte("server: [unclosed"))
	require.Error(t, err)
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\nscheduler:\n  timezone: Europe/Berlin\n"), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(platformEnv, " Webhook ")
	t.Setenv(activationLogEnv, "/tmp/activations.jsonl")
	t.Setenv(databaseDSNEnv, "postgres://localhost/activations")
	t.Setenv(telegramTokenEnv, "bot")
	t.Setenv(telegramChatIDEnv, "42")

	cfg := Load()
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "webhook", cfg.Destination.Platform)
	assert.Equal(t, "/tmp/activations.jsonl", cfg.Audit.LogPath)
	assert.Equal(t, "postgres://localhost/activations", cfg.Database.DSN)
	assert.Equal(t, "42", cfg.Notifications.Telegram.ChatID)
	assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Location().String())
	assert.Len(t, cfg.Providers, 3, "no providers in file means the default chain")
	assert.Equal(t, validation.DefaultTags, cfg.Vocabulary)
}

func TestLoadFallsBackOnUnreadableFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(logLevelEnv, "error")

	cfg := Load()
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "mock", cfg.Destination.Platform)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}
