package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "config-test-missing")
	t.Setenv("MONGODB_CONNECTION_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DBNAME_DATA", "greep_test")
	t.Setenv("DASHBOARD_CACHE_TTL", "120")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://example:27017", cfg.MongoDB_ConnectionURI)
	assert.Equal(t, "greep_test", cfg.MongoDB_DBName_Data)
	assert.Equal(t, 120*time.Second, cfg.CacheTTL())
	assert.Equal(t, 5*time.Second, cfg.DedupTTL())
	assert.Equal(t, "Europe/Istanbul", cfg.StoreDefaultTimezone)
}

func TestNewConfig_NegativeTTLRejected(t *testing.T) {
	t.Setenv("GO_ENV", "config-test-missing")
	t.Setenv("MONGODB_CONNECTION_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DBNAME_DATA", "greep_test")
	t.Setenv("DASHBOARD_CACHE_TTL", "-1")

	_, err := NewConfig()
	assert.Error(t, err)
}
