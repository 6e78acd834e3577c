package ctxlogger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandlerAddsCtxAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(&buf, nil),
	})

	ctx := AppendCtx(context.Background(), slog.String("request_id", "req1"))
	ctx = AppendCtx(ctx, slog.String("room_id", "room1"))

	logger.InfoContext(ctx, "hello", "extra", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req1", record["request_id"], "earlier appended attrs must survive later appends")
	assert.Equal(t, "room1", record["room_id"])
	assert.Equal(t, "value", record["extra"])
}

func TestAppendCtxDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(&buf, nil),
	})

	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	_ = AppendCtx(parent, slog.String("b", "2"))

	logger.InfoContext(parent, "msg")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "1", record["a"])
	assert.NotContains(t, record, "b")
}
