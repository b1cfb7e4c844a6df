package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuild_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"nonsense", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := Build(tt.level, "production")
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestBuild_Development(t *testing.T) {
	l, err := Build("info", "Development")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestFromContext_RequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-42")

	FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestFromContext_Fallbacks(t *testing.T) {
	var nilCtx context.Context
	assert.Same(t, Log, FromContext(nilCtx))
	assert.Same(t, Log, FromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(context.Background()))

	def := zap.NewExample()
	assert.Same(t, def, FromContextOr(context.Background(), def))
	assert.Same(t, Log, FromContextOr(context.Background(), nil))

	scoped := zap.NewExample()
	assert.Same(t, scoped, FromContextOr(WithLogger(context.Background(), scoped), def))
}
