package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The minimal encoder must never silently discard fields.
func TestMinimalEncoderNeverDiscardsFields(t *testing.T) {
	encoder := newMinimalEncoder(false)

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2026, 1, 2, 13, 4, 35, 0, time.UTC),
		LoggerName: "toolchain",
		Message:    "go build finished",
	}

	fields := []zapcore.Field{
		zap.String(FieldOutput, "./hello"),
		zap.Int64(FieldDurationMS, 812),
		zap.Bool("keep_workdir", true),
		zap.Strings(FieldArgs, []string{"build", "-o", "hello"}),
		zap.String("field.with.dots", "x"),
	}

	buf, err := encoder.EncodeEntry(entry, fields)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "13:04:35")
	assert.Contains(t, out, "toolchain")
	assert.Contains(t, out, "go build finished")
	assert.Contains(t, out, "output=./hello")
	assert.Contains(t, out, "duration_ms=812")
	assert.Contains(t, out, "keep_workdir=true")
	assert.Contains(t, out, "args=")
	assert.Contains(t, out, "field.with.dots=x")
	assert.NotContains(t, out, "\x1b[", "color disabled encoder must not emit ANSI codes")
}

func TestMinimalEncoderKeepsWithFields(t *testing.T) {
	var buf bytes.Buffer
	encoder := newMinimalEncoder(false)
	log := zap.New(zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel))

	log.With(zap.String(FieldBuildID, "b-1")).Info("packing", zap.String(FieldStage, "generate"))
	log.Info("no context")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "build_id=b-1")
	assert.Contains(t, lines[0], "stage=generate")
	assert.NotContains(t, lines[1], "build_id", "With() fields must not leak into the parent logger")
}

func TestMinimalEncoderLevels(t *testing.T) {
	encoder := newMinimalEncoder(false)

	buf, err := encoder.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Message: "m"}, nil)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "INFO")

	buf, err = encoder.EncodeEntry(zapcore.Entry{Level: zapcore.WarnLevel, Message: "m"}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "WARN")

	buf, err = encoder.EncodeEntry(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "m"}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ERROR")
}
