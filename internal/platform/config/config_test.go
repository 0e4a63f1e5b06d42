package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/internal/platform/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "CHF", cfg.CRM.Currency)
	assert.Equal(t, 255, cfg.CRM.TitleMaxLength)
	assert.Equal(t, "pickup", cfg.Ecommerce.DefaultPickup.DeliveryType)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
log_level: debug
crm:
  pipeline_id: 7
  stage_id: 70
  title_max_length: 120
ecommerce:
  stations:
    - name: Bern Bahnhof
      aliases: [bern hb]
      city: Bern
      canton: BE
      delivery_type: station
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CRM_STAGE_ID", "71")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("KAFKA_TOPIC", "bot-orders")
	t.Setenv("CRM_TIMEOUT", "3s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(7), cfg.CRM.PipelineID)
	assert.Equal(t, int64(71), cfg.CRM.StageID)
	assert.Equal(t, 120, cfg.CRM.TitleMaxLength)
	assert.Equal(t, 3*time.Second, cfg.CRM.Timeout)
	require.Len(t, cfg.Ecommerce.Stations, 1)
	assert.Equal(t, "BE", cfg.Ecommerce.Stations[0].Canton)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	// untouched sections keep their defaults
	assert.Equal(t, int64(101), cfg.CRM.Attributes.DeliveryCity)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CRM_TIMEOUT", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "verbose"

	assert.Error(t, cfg.Validate())
}
