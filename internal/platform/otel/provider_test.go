package otel

import (
	"context"
	"testing"
)

func TestSetupOptIn(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "disabled", cfg: Config{ServiceName: "svc", Endpoint: "http://localhost:4318", Enabled: false}},
		{name: "no endpoint", cfg: Config{ServiceName: "svc", Enabled: true}},
		{name: "zero value", cfg: Config{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), tc.cfg)
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if shutdown == nil {
				t.Fatal("Setup() returned nil shutdown")
			}
			if err := shutdown(context.Background()); err != nil {
				t.Errorf("shutdown error = %v", err)
			}
		})
	}
}

func TestConfigActive(t *testing.T) {
	cfg := Config{ServiceName: "svc", Endpoint: "http://localhost:4318", Enabled: true}
	if !cfg.active() {
		t.Error("active() = false with endpoint and enabled, want true")
	}
	cfg.Endpoint = ""
	if cfg.active() {
		t.Error("active() = true without endpoint, want false")
	}
}
