package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		enabled zapcore.Level
		quiet   zapcore.Level
		wantErr bool
	}{
		{"production default", Options{Service: "svc", Environment: "production"}, zapcore.InfoLevel, zapcore.DebugLevel, false},
		{"production warn", Options{Service: "svc", Level: "warn"}, zapcore.WarnLevel, zapcore.InfoLevel, false},
		{"development", Options{Service: "svc", Environment: "development"}, zapcore.DebugLevel, zapcore.DebugLevel - 1, false},
		{"bad level", Options{Service: "svc", Level: "loud"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.quiet))
		})
	}
}
