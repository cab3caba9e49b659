package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "")
	t.Setenv("STAGE_TIMEOUT", "")
	t.Setenv("RESOLVER_FAILURE_POLICY", "proceed")

	cfg := Load()

	assert.Equal(t, 20, cfg.Rag.TopK)
	assert.Equal(t, 30*time.Second, cfg.Rag.StageTimeout)
	assert.Equal(t, "proceed", cfg.Rag.ResolverFailurePolicy)
	assert.InDelta(t, 0.30, cfg.Rag.CentroidThreshold, 1e-9)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "7")
	t.Setenv("SEARCH_HIT_THRESHOLD", "0.5")
	t.Setenv("STAGE_TIMEOUT", "5s")
	t.Setenv("RESOLVER_FAILURE_POLICY", "ABORT")
	t.Setenv("VECTOR_BACKEND", "pgvector")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "safebites-staging")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	cfg := Load()

	assert.Equal(t, 7, cfg.Rag.TopK)
	assert.InDelta(t, 0.5, cfg.Rag.HitThreshold, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Rag.StageTimeout)
	assert.Equal(t, "abort", cfg.Rag.ResolverFailurePolicy)
	assert.Equal(t, "pgvector", cfg.Vector.Backend)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "safebites-staging", cfg.Tracing.ServiceName)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-9)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 3, getEnvAsInt("SOME_INT", 3))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("SOME_BOOL", "false")
	assert.False(t, getEnvAsBool("SOME_BOOL", true))

	t.Setenv("SOME_BOOL", "maybe")
	assert.True(t, getEnvAsBool("SOME_BOOL", true))
}
