package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogrusTest(t *testing.T) (*LogrusLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})
	return NewLogrusLogger(l), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogrusLogger_FieldsAndLevels(t *testing.T) {
	log, buf := newLogrusTest(t)
	ctx := WithRequestID(context.Background(), "abc")

	log.Debug(ctx, "dbg", "a", 1)
	log.With("module", "web").Warn(ctx, "wrn", "path", "/admin")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "dbg", lines[0]["msg"])
	assert.EqualValues(t, 1, lines[0]["a"])
	assert.Equal(t, "abc", lines[0]["request_id"])

	assert.Equal(t, "warning", lines[1]["level"])
	assert.Equal(t, "web", lines[1]["module"])
	assert.Equal(t, "/admin", lines[1]["path"])
}

func TestLogrusLogger_OddArgs(t *testing.T) {
	log, buf := newLogrusTest(t)

	log.Info(context.Background(), "odd", "dangling")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "dangling", lines[0]["!BADKEY"])
}
