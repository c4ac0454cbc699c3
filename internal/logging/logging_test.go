package logging

import (
	"testing"

	"go.uber.org/zap"

	"qcr/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zap.AtomicLevel
		wantErr bool
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel), false},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel), false},
		{"warn", zap.NewAtomicLevelAt(zap.WarnLevel), false},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel), false},
		{"verbose", zap.NewAtomicLevelAt(zap.InfoLevel), true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want.Level() {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want.Level())
		}
	}
}

func TestNew(t *testing.T) {
	log, err := New(config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !log.Core().Enabled(zap.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}

	if _, err := New(config.LogConfig{Level: "loud", Format: "console"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
