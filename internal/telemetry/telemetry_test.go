package telemetry

import (
	"context"
	"testing"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup(t *testing.T) {
	t.Run("Without exporter", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), &config.Otel{ServiceName: "storefront-checkout", SamplerRatio: 1})
		require.NoError(t, err)

		_, span := otel.Tracer("test").Start(context.Background(), "checkout")
		assert.True(t, span.SpanContext().IsSampled())
		span.End()

		require.NoError(t, shutdown(context.Background()))
	})

	t.Run("With exporter", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), &config.Otel{
			ServiceName:      "storefront-checkout",
			ExporterEndpoint: "http://127.0.0.1:4318",
			SamplerRatio:     0,
		})
		require.NoError(t, err)

		_, span := otel.Tracer("test").Start(context.Background(), "checkout")
		assert.False(t, span.SpanContext().IsSampled())
		span.End()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = shutdown(ctx)
	})
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1.5, want: "AlwaysOnSampler"},
		{ratio: 0, want: "AlwaysOffSampler"},
		{ratio: 0.25, want: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		s := sampler(tt.ratio)
		assert.Contains(t, s.Description(), tt.want)
	}
}
