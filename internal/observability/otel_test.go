package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/yungbote/neurobridge-commons/internal/platform/config"
)

func TestInitOTelDisabled(t *testing.T) {
	shutdown, err := InitOTel(context.Background(), nil, config.OTelConfig{})
	if err != nil {
		t.Fatalf("InitOTel: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitOTelStdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := InitOTel(context.Background(), nil, config.OTelConfig{Enabled: true, SampleRatio: 1}, WithStdoutWriter(&buf))
	if err != nil {
		t.Fatalf("InitOTel: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "command.probe")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "command.probe") {
		t.Fatalf("span not exported: %q", buf.String())
	}
}

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "a=1, b = 2,broken,=x")
	h := otelHeaders()
	if len(h) != 2 || h["a"] != "1" || h["b"] != "2" {
		t.Fatalf("headers: got=%v", h)
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.5) != 0.5 {
		t.Fatalf("clampRatio")
	}
}
