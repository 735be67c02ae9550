package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "development console",
			cfg:  Config{Level: "debug", Development: true, Encoding: "console"},
		},
		{
			name: "production json",
			cfg:  Config{Level: "info", Encoding: "json", Service: "vizdeck", Version: "1.0.0"},
		},
		{
			name: "unknown level falls back to info",
			cfg:  Config{Level: "chatty", Encoding: "json"},
		},
		{
			name: "empty encoding keeps the preset default",
			cfg:  Config{Level: "warn", Development: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
			log.Info("constructed", zap.String("case", tt.name))
			log.Sync()
		})
	}
}

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"} {
		t.Run(level, func(t *testing.T) {
			log, err := New(Config{Level: level, Development: true})
			require.NoError(t, err)
			require.NotNil(t, log)
			log.Sync()
		})
	}
}

func TestIdentityFields(t *testing.T) {
	fields := identityFields(Config{Service: "vizdeck", Version: "1.0.0"})
	assert.Equal(t, []zap.Field{
		zap.String("service", "vizdeck"),
		zap.String("version", "1.0.0"),
	}, fields)

	// Unset identity stamps nothing.
	assert.Empty(t, identityFields(Config{Level: "info"}))

	fields = identityFields(Config{Service: "vizdeck"})
	assert.Equal(t, []zap.Field{zap.String("service", "vizdeck")}, fields)
}

func TestDefault(t *testing.T) {
	t.Setenv("VIZDECK_LOG_LEVEL", "debug")
	t.Setenv("VIZDECK_APP_ENVIRONMENT", "development")
	log := Default()
	require.NotNil(t, log)
	log.Sync()

	t.Setenv("VIZDECK_LOG_LEVEL", "")
	t.Setenv("VIZDECK_APP_ENVIRONMENT", "production")
	log = Default()
	require.NotNil(t, log)
	log.Sync()
}
