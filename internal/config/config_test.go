package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "INR", cfg.DefaultCurrency)
	assert.Equal(t, 5*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.FXRates)
}

func TestFromViper_Overrides(t *testing.T) {
	v := NewViper()
	v.Set("ENV", "production")
	v.Set("FX_RATES", "inr=84.5, NGN=1600")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092")
	v.Set("DEFAULT_CURRENCY", "usd")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, map[string]string{"INR": "84.5", "NGN": "1600"}, cfg.FXRates)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
}

func TestFromViper_RejectsMalformedRates(t *testing.T) {
	for _, raw := range []string{"INR83", "INR=", "=83", "INR=83,NGN"} {
		t.Run(raw, func(t *testing.T) {
			v := NewViper()
			v.Set("FX_RATES", raw)

			cfg, err := FromViper(v)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_ValidateRequiresJWTSecret(t *testing.T) {
	cfg, err := FromViper(NewViper())
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	v := NewViper()
	v.Set("JWT_SECRET", "s3cret")
	cfg, err = FromViper(v)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestDBConfig_DSN(t *testing.T) {
	db := DBConfig{Host: "h", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5433 sslmode=disable", db.DSN())
}
