package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("JWT_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, OrderStoreSQL, cfg.OrderStore)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 500, cfg.ReplayLimit)
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "x", DBDriver: "sqlite", OrderStore: OrderStoreSQL}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badDriver := base
	badDriver.DBDriver = "oracle"
	assert.Error(t, badDriver.Validate())

	mongo := base
	mongo.OrderStore = OrderStoreMongo
	mongo.MongoURI = ""
	assert.Error(t, mongo.Validate())
}
