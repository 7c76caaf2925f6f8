package app

import (
	"testing"

	"github.com/markscrivo/crewscrape/internal/config"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Provider = "mystery"
	if _, err := New(cfg); err == nil {
		t.Fatal("unknown provider should fail construction")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := config.Defaults()
	// Defaults carry no credential; the LLM client must refuse before any
	// browser is started.
	if _, err := New(cfg); err == nil {
		t.Fatal("missing api key should fail construction")
	}
}

func TestSetupLoggingBadLevelFallsBack(t *testing.T) {
	SetupLogging("nonsense", false)
	SetupLogging("debug", false)
}
