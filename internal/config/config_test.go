package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg := New(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15, cfg.Trends.MaxKeywords)
	assert.Equal(t, 20.0, cfg.Trends.MinConfidence)
	assert.Equal(t, 14, cfg.Inventory.DefaultLeadTimeDays)
	assert.Equal(t, "today 3-m", cfg.Trends.Timeframe)
	assert.Equal(t, []string{"Labor Day", "Back to School", "Fall Fashion Week"}, cfg.Analysis.Events)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 600*time.Second, cfg.AnalysisTimeout())
	assert.Equal(t, 3, cfg.LLM.RetryAttempts)
	assert.False(t, cfg.Cache.Enabled)
}

func TestNewOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("TRENDS_PROVIDER", "SerpAPI")
	v.Set("ANALYSIS_EVENTS", " Black Friday , ,Cyber Monday")
	v.Set("APP_MAX_UPLOAD_MB", 0)
	v.Set("ANALYSIS_TIMEOUT_SECONDS", 0)

	cfg := New(v)

	assert.Equal(t, "serpapi", cfg.Trends.Provider)
	assert.Equal(t, []string{"Black Friday", "Cyber Monday"}, cfg.Analysis.Events)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 10*time.Minute, cfg.AnalysisTimeout())
}
