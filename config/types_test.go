package config

import "testing"

func validConfig() *Config {
	c := &Config{}
	c.Server.Port = 8080
	c.Reasoning.Model = "gpt-4o-mini"
	return c
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate on valid config failed: %v", err)
	}

	c := validConfig()
	c.Server.Port = 0
	if err := c.Validate(); err == nil {
		t.Error("Validate accepted port 0")
	}

	c = validConfig()
	c.Reasoning.Model = ""
	if err := c.Validate(); err == nil {
		t.Error("Validate accepted empty reasoning model")
	}

	c = validConfig()
	c.Triage.ContextWindow = -1
	if err := c.Validate(); err == nil {
		t.Error("Validate accepted negative context window")
	}
}

func TestApplyDefaults(t *testing.T) {
	c := validConfig()
	c.ApplyDefaults()

	if c.Triage.ContextWindow != 30 {
		t.Errorf("ContextWindow = %d, want 30", c.Triage.ContextWindow)
	}
	if c.Triage.PhotoPrompt == "" {
		t.Error("PhotoPrompt not defaulted")
	}
	if c.Reasoning.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", c.Reasoning.TimeoutSeconds)
	}
	if c.Observability.ServiceName == "" {
		t.Error("ServiceName not defaulted")
	}

	// Explicit settings are preserved.
	c = validConfig()
	c.Triage.ContextWindow = 5
	c.ApplyDefaults()
	if c.Triage.ContextWindow != 5 {
		t.Errorf("ContextWindow = %d, want 5", c.Triage.ContextWindow)
	}
}
