package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: ComponentReport})

	logger.Info("rendered", FieldReportID, "r-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, ComponentReport, line[FieldComponent])
	assert.Equal(t, "r-1", line[FieldReportID])
}

func TestWithComponentOverrides(t *testing.T) {
	base := New(Config{Output: &bytes.Buffer{}, Component: ComponentApp})
	assert.Equal(t, ComponentHTTP, base.WithComponent(ComponentHTTP).Component())
	assert.Equal(t, ComponentApp, base.Component())
}

func TestMiddlewareStoresLogger(t *testing.T) {
	logger := New(Config{Output: &bytes.Buffer{}, Component: ComponentHTTP})

	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Same(t, logger, got)
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf, Component: ComponentReport}))

	sl.LogError(context.Background(), "render failed", errors.New("boom"), OpRender, ErrorTypeRender)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line[FieldError])
	assert.Equal(t, ErrorTypeRender, line[FieldErrorType])
	assert.Equal(t, "ERROR", line["level"])
}
