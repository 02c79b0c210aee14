package shared

import (
	"strings"
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "abc")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_SLICE", " a, b ,,c ")

	if got := GetIntEnv("TEST_INT", 1); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := GetIntEnv("TEST_BAD_INT", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}
	if got := GetBoolEnv("TEST_BOOL", true); got {
		t.Error("Expected false")
	}
	if got := GetDurationEnv("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("Expected 90s, got %v", got)
	}
	got := GetStringSliceEnv("TEST_SLICE", nil)
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("Expected [a b c], got %v", got)
	}
	if got := GetEnv("TEST_MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
}

func TestLoadWebConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config, err := LoadWebConfig()
		if err != nil {
			t.Fatalf("LoadWebConfig failed: %v", err)
		}
		if config.HTTPPort != DefaultHTTPPort {
			t.Errorf("Expected port %s, got %s", DefaultHTTPPort, config.HTTPPort)
		}
		if config.Backend.CSRFCookieName != "csrftoken" {
			t.Errorf("Expected csrftoken, got %s", config.Backend.CSRFCookieName)
		}
		if Offline(config) {
			t.Error("Expected a backend URL by default")
		}
	})

	t.Run("Offline backend", func(t *testing.T) {
		t.Setenv("BACKEND_URL", "offline")
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		config, err := LoadWebConfig()
		if err != nil {
			t.Fatalf("LoadWebConfig failed: %v", err)
		}
		if !Offline(config) {
			t.Error("Expected offline mode")
		}
	})

	t.Run("Trailing slash trimmed", func(t *testing.T) {
		t.Setenv("BACKEND_URL", "http://backend:8000/")
		config, err := LoadWebConfig()
		if err != nil {
			t.Fatalf("LoadWebConfig failed: %v", err)
		}
		if config.Backend.URL != "http://backend:8000" {
			t.Errorf("Expected trimmed URL, got %s", config.Backend.URL)
		}
	})

	invalid := map[string]map[string]string{
		"Bad environment": {"ENVIRONMENT": "qa"},
		"Bad log level":   {"LOG_LEVEL": "verbose"},
		"Bad port":        {"HTTP_PORT": "http"},
		"Bad backend url": {"BACKEND_URL": "not a url"},
	}
	for name, env := range invalid {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadWebConfig(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidateWebConfigListsFields(t *testing.T) {
	config := &WebConfig{
		Environment:   "development",
		LogLevel:      "info",
		HTTPPort:      "8080",
		GRPCPort:      "",
		Backend:       BackendConfig{Timeout: time.Second, CSRFCookieName: "csrftoken"},
		Security:      SecurityConfig{SessionTTL: time.Hour},
		CORS:          CORSConfig{AllowedOrigins: []string{"*"}},
		ProbeInterval: 0,
	}
	err := ValidateWebConfig(config)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, field := range []string{"GRPCPort", "ProbeInterval"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Expected %s in %q", field, err.Error())
		}
	}
}
