package telemetry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/portcore/internal/telemetry"
)

func TestRuleFetches_Counts(t *testing.T) {
	before := testutil.ToFloat64(telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeHit))
	telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeHit).Inc()
	after := testutil.ToFloat64(telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeHit))
	assert.Equal(t, before+1, after)
}

func TestWriteTextfile(t *testing.T) {
	telemetry.CacheResets.WithLabelValues("kept").Inc()
	path := filepath.Join(t.TempDir(), "portcore.prom")

	require.NoError(t, telemetry.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "portcore_cache_resets_total")
}

func TestSpans_NoopProviderDoesNotPanic(t *testing.T) {
	ctx, span := telemetry.StartSpan(context.Background(), "test")
	assert.NotNil(t, ctx)
	telemetry.EndSpan(span, errors.New("boom"))

	_, span = telemetry.StartSpan(ctx, "ok")
	telemetry.EndSpan(span, nil)
}
