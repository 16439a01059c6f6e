package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Planner.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Planner.CacheTTL)
	assert.Equal(t, 500, cfg.Planner.MaxCourses)
	assert.Equal(t, "TBA", cfg.Catalog.PlaceholderLocation)
	assert.Equal(t, int64(5*1024*1024), cfg.Catalog.MaxImportBytes)
	assert.Equal(t, 3, cfg.Exports.WorkerRetries)
	assert.False(t, cfg.Migrations.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("PLANNER_CACHE_TTL", "90s")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("CATALOG_MAX_IMPORT_BYTES", -1)

	cfg := fromViper(v)

	assert.Equal(t, 90*time.Second, cfg.Planner.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(5*1024*1024), cfg.Catalog.MaxImportBytes)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Hour, parseDuration("2h", time.Minute))
}
