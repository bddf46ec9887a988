package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olist-dashboard/internal/config"
)

func TestStartSpan_ChildInheritsTrace(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "GET /")
	_, child := StartSpan(ctx, "dashboard.build")

	assert.Len(t, parent.TraceID, 32)
	assert.Len(t, parent.SpanID, 16)
	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
	assert.Same(t, parent, GetSpan(ctx))
}

func TestSpan_FinishAndError(t *testing.T) {
	_, span := StartSpan(context.Background(), "load")
	span.SetTag("dataset", "orders")
	span.SetError(errors.New("boom"))
	span.Finish()

	require.NotNil(t, span.Duration)
	require.NotNil(t, span.EndTime)
	assert.Equal(t, SpanStatusError, span.Status)
	assert.Equal(t, "boom", span.Error)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("span finished", "span", span)

	out := buf.String()
	assert.Contains(t, out, "span.operation=load")
	assert.Contains(t, out, "span.tag.dataset=orders")
	assert.Contains(t, out, "span.error=boom")
}

func TestNewLogger_Formats(t *testing.T) {
	var jsonBuf bytes.Buffer
	newLogger(&jsonBuf, config.LoggerConfig{Level: "info", Format: "json"}).Info("hello", "k", "v")
	assert.True(t, strings.HasPrefix(jsonBuf.String(), "{"))
	assert.Contains(t, jsonBuf.String(), `"k":"v"`)

	var textBuf bytes.Buffer
	newLogger(&textBuf, config.LoggerConfig{Level: "info", Format: "text"}).Info("hello", "k", "v")
	assert.Contains(t, textBuf.String(), "hello")
	assert.False(t, strings.HasPrefix(textBuf.String(), "{"))
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "warn", Format: "json"})
	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", GetRequestID(ctx))
}
