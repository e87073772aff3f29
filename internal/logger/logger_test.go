package logger

import "testing"

func TestConfig(t *testing.T) {
	tests := []struct {
		name     string
		json     bool
		debug    bool
		encoding string
		level    string
		sampled  bool
		noStack  bool
	}{
		{name: "console", encoding: "console", level: "info", noStack: true},
		{name: "console debug", debug: true, encoding: "console", level: "debug"},
		{name: "json", json: true, encoding: "json", level: "info", sampled: true, noStack: true},
		{name: "json debug", json: true, debug: true, encoding: "json", level: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config(tt.json, tt.debug)

			if cfg.Encoding != tt.encoding {
				t.Fatalf("expected encoding %q, got %q", tt.encoding, cfg.Encoding)
			}
			if got := cfg.Level.String(); got != tt.level {
				t.Fatalf("expected level %q, got %q", tt.level, got)
			}
			if (cfg.Sampling != nil) != tt.sampled {
				t.Fatalf("expected sampling %v, got %+v", tt.sampled, cfg.Sampling)
			}
			if cfg.DisableStacktrace != tt.noStack {
				t.Fatalf("expected DisableStacktrace %v", tt.noStack)
			}
		})
	}
}

func TestNewNamesLogger(t *testing.T) {
	logger, err := New(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Name() != name {
		t.Fatalf("expected logger name %q, got %q", name, logger.Name())
	}
}
