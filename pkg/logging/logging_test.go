package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	testCases := []struct {
		name         string
		debug        bool
		debugEnabled bool
	}{
		{name: "production", debug: false, debugEnabled: false},
		{name: "development", debug: true, debugEnabled: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			logger, err := New(testCase.debug, "dirtree", "test")
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			if got := logger.Core().Enabled(zapcore.DebugLevel); got != testCase.debugEnabled {
				t.Fatalf("debug enabled = %v, want %v", got, testCase.debugEnabled)
			}
			if zap.L() != logger {
				t.Fatal("expected the global logger to be replaced")
			}
		})
	}
}
