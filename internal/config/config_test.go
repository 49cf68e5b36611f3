package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 224, cfg.DefaultInputSize)
	assert.Equal(t, 0.5, cfg.RiskThreshold)
	assert.Equal(t, 10*time.Second, cfg.HospitalTimeout)
	require.Len(t, cfg.ConcernLabels, 3)
	assert.Equal(t, []string{"cancerous", "malignant", "positive"}, cfg.ConcernLabels)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RISK_THRESHOLD", "0.75")
	t.Setenv("CONCERN_LABELS", "melanoma, malignant")
	t.Setenv("HOSPITAL_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")

	cfg := Load()

	assert.Equal(t, 0.75, cfg.RiskThreshold)
	assert.Equal(t, []string{"melanoma", "malignant"}, cfg.ConcernLabels)
	assert.Equal(t, 5*time.Second, cfg.HospitalTimeout)
	assert.Equal(t, int64(1048576), cfg.MaxUploadBytes)
}

func TestGetEnvAsFloatInvalid(t *testing.T) {
	t.Setenv("RISK_THRESHOLD", "not-a-number")
	cfg := Load()
	assert.Equal(t, 0.5, cfg.RiskThreshold)
}
