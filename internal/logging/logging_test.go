package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_DefaultsToInfoLevelOnEmptyConfig(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf})
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %v, want info", log.GetLevel())
	}
}

func TestNew_DefaultsToInfoLevelOnUnrecognizedLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "not-a-level", Output: &buf})
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %v, want info", log.GetLevel())
	}
}

func TestNew_ParsesConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "DEBUG", Output: &buf})
	if log.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %v, want debug", log.GetLevel())
	}
}

func TestComponent_AddsComponentField(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Output: &buf})
	child := Component(root, "ingress")
	child.Info().Msg("hello")

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if decoded["component"] != "ingress" {
		t.Fatalf("component = %v, want ingress", decoded["component"])
	}
}

func TestModule_AddsModuleField(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Output: &buf})
	child := Module(root, "directory")
	child.Info().Msg("hello")

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if decoded["module"] != "directory" {
		t.Fatalf("module = %v, want directory", decoded["module"])
	}
}
