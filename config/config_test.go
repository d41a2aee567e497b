package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "civicecho", cfg.MongoDatabase)
	assert.Equal(t, "complaint_limit", cfg.RateLimitPrefix)
	assert.Equal(t, 20, cfg.ComplaintDailyLimit)
	assert.Equal(t, 0.5, cfg.ClusterDistanceKm)
	assert.Equal(t, 24*time.Hour, cfg.ClusterWindow)
	assert.Equal(t, 0.8, cfg.ClusterMinSimilarity)
	assert.True(t, cfg.GeocodeEnabled)
	assert.Empty(t, cfg.AuthorityEmails)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("GO_ENV", "Production")
	t.Setenv("STORE_DRIVER", " Memory ")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("AUTHORITY_EMAIL_WHITELIST", "a@city.gov, ,b@city.gov")
	t.Setenv("COMPLAINT_DAILY_LIMIT", "3")
	t.Setenv("CLUSTER_WINDOW", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"a@city.gov", "b@city.gov"}, cfg.AuthorityEmails)
	assert.Equal(t, 3, cfg.ComplaintDailyLimit)
	assert.Equal(t, 2*time.Hour, cfg.ClusterWindow)
}

func TestLoadRequiresSecret(t *testing.T) {
	validEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			JWTSecret:            "secret",
			StoreDriver:          DriverMongo,
			MongoURI:             "mongodb://localhost",
			ClusterDistanceKm:    0.5,
			ClusterWindow:        time.Hour,
			ClusterMinSimilarity: 0.8,
		}
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank secret", func(c *Config) { c.JWTSecret = " " }},
		{"mongo without uri", func(c *Config) { c.MongoURI = "" }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }},
		{"negative limit", func(c *Config) { c.ComplaintDailyLimit = -1 }},
		{"zero distance", func(c *Config) { c.ClusterDistanceKm = 0 }},
		{"zero window", func(c *Config) { c.ClusterWindow = 0 }},
		{"similarity above one", func(c *Config) { c.ClusterMinSimilarity = 1.5 }},
	}

	ok := base()
	require.NoError(t, ok.Validate())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConnectRedis(t *testing.T) {
	client, err := ConnectRedis(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, client)

	mr := miniredis.RunT(t)
	client, err = ConnectRedis(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { client.Close() })

	mr.Close()
	_, err = ConnectRedis(context.Background(), mr.Addr(), "")
	assert.Error(t, err)
}
