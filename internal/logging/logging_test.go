package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/vijay-prabhu/inboxdomains/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		level   zapcore.Level
		wantErr bool
	}{
		{"console info", config.LogConfig{Level: "info", Format: "console"}, zapcore.InfoLevel, false},
		{"json debug", config.LogConfig{Level: "debug", Format: "json"}, zapcore.DebugLevel, false},
		{"bad level", config.LogConfig{Level: "chatty", Format: "json"}, 0, true},
		{"bad format", config.LogConfig{Level: "info", Format: "xml"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !logger.Core().Enabled(tt.level) {
				t.Errorf("level %v not enabled", tt.level)
			}
			if tt.level > zapcore.DebugLevel && logger.Core().Enabled(tt.level-1) {
				t.Errorf("level %v unexpectedly enabled", tt.level-1)
			}
		})
	}
}
