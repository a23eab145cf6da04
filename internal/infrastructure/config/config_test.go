package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "storefront-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "storefront", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshTokenExpiration)
	assert.Equal(t, 10, cfg.JWT.MaxRefreshCount)
	assert.Equal(t, "USD", cfg.Store.Currency)
	assert.Equal(t, "flat", cfg.Store.ShippingMode)
	assert.Equal(t, 30*time.Minute, cfg.Reservation.TTL)
	assert.Equal(t, time.Minute, cfg.Reservation.CheckInterval)
	assert.Equal(t, 100, cfg.Reservation.BatchSize)
	assert.Equal(t, "razorpay", cfg.Payment.Provider)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STORE_APP_PORT", "9090")
	t.Setenv("STORE_DATABASE_HOST", "db.internal")
	t.Setenv("STORE_STORE_CURRENCY", "EUR")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "EUR", cfg.Store.Currency)
}

func TestValidateShippingMode(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Store.ShippingMode = "teleport"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shipping_mode")
}

func TestValidateCoupons(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	cfg.Store.Coupons = []CouponConfig{{Code: "SAVE10", Kind: "percent", Value: 10}}
	require.NoError(t, cfg.validate())

	cfg.Store.Coupons = []CouponConfig{{Code: "SAVE10", Kind: "percent", Value: 150}}
	require.Error(t, cfg.validate())

	cfg.Store.Coupons = []CouponConfig{{Code: "SAVE10", Kind: "bogus", Value: 10}}
	require.Error(t, cfg.validate())
}

func TestValidateProduction(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.App.Env = "production"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.Payment.KeySecret = "rzp_secret"
		cfg.Cookie.Secure = true
		return cfg
	}

	require.NoError(t, base().validate())

	cfg := base()
	cfg.JWT.Secret = "short"
	assert.Error(t, cfg.validate())

	cfg = base()
	cfg.Database.SSLMode = "disable"
	assert.Error(t, cfg.validate())

	cfg = base()
	cfg.Payment.KeySecret = ""
	assert.Error(t, cfg.validate())

	cfg = base()
	cfg.HTTP.CORSAllowOrigins = []string{"*"}
	assert.Error(t, cfg.validate())
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "store", Password: "p@ss/word",
		DBName: "storefront", SSLMode: "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=disable")
}
