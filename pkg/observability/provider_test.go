package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colormuse/colormuse-books/internal/config"
)

func TestInit_DisabledFallsBackToNoop(t *testing.T) {
	p, err := Init(context.Background(), DefaultConfig("colormuse-test"))
	require.NoError(t, err)

	assert.NotNil(t, p.Tracer)
	assert.NotNil(t, p.Meter)
	assert.NotNil(t, p.Sanitizer)
	assert.Nil(t, p.TracerProvider)
	assert.Nil(t, p.MeterProvider)

	_, span := p.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEndpointHost(t *testing.T) {
	tests := []struct {
		in       string
		host     string
		insecure bool
	}{
		{"http://collector:4318", "collector:4318", true},
		{"https://otel.example.com", "otel.example.com", false},
		{"localhost:4318", "localhost:4318", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, insecure := endpointHost(tt.in)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.insecure, insecure)
		})
	}
}

func TestFromServiceConfig(t *testing.T) {
	cfg := &config.Config{
		ServiceName:    "colormuse-web",
		ServiceVersion: "1.2.3",
		Environment:    "production",
		EnableTracing:  true,
		OTLPEndpoint:   "http://collector:4318",
		SamplingRate:   0.25,
		PIILevel:       "none",
	}

	out := FromServiceConfig(cfg)
	assert.Equal(t, "colormuse-web", out.ServiceName)
	assert.Equal(t, "1.2.3", out.ServiceVersion)
	assert.True(t, out.TracingEnabled)
	assert.False(t, out.MetricsEnabled)
	assert.Equal(t, "http://collector:4318", out.OTLPEndpoint)
	assert.Equal(t, 0.25, out.SamplingRate)
	assert.Equal(t, "none", out.PIILevel)
}
