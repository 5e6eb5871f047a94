package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  status_changed_topic_name: "shipment.status.changed"
  carrier_updates_topic_name: "carrier.updates"
redis:
  host: "localhost"
  port: 6379
shipdesk:
  http_addr: ":8080"
  kafka_consumer_group: "shipdesk-api"
  current_shipment_ttl_seconds: 600
  rate_limit_per_minute: 120
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "shipment.status.changed", cfg.Kafka.StatusChangedTopicName)
	require.Equal(t, "carrier.updates", cfg.Kafka.CarrierUpdatesTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, ":8080", cfg.ShipDesk.HTTPAddr)
	require.Equal(t, int64(120), cfg.ShipDesk.RateLimitPerMinute)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
