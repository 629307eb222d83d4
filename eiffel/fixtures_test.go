package eiffel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

type programFixture struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Stdout string `yaml:"stdout"`
	Error  struct {
		Type     string `yaml:"type"`
		Contains string `yaml:"contains"`
	} `yaml:"error"`
	Config struct {
		StepQuota          int    `yaml:"step_quota"`
		RecursionLimit     int    `yaml:"recursion_limit"`
		EntryClass         string `yaml:"entry_class"`
		EntryFeature       string `yaml:"entry_feature"`
		DefaultCreateClass string `yaml:"default_create_class"`
		StrictMembers      bool   `yaml:"strict_members"`
	} `yaml:"config"`
}

func (f programFixture) engineConfig() Config {
	return Config{
		StepQuota:          f.Config.StepQuota,
		RecursionLimit:     f.Config.RecursionLimit,
		EntryClass:         f.Config.EntryClass,
		EntryFeature:       f.Config.EntryFeature,
		DefaultCreateClass: f.Config.DefaultCreateClass,
		StrictMembers:      f.Config.StrictMembers,
	}
}

func loadProgramFixtures(t *testing.T) []programFixture {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "programs", "*.yaml"))
	if err != nil {
		t.Fatalf("glob fixtures: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no fixtures found")
	}
	var out []programFixture
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		var fixture programFixture
		if err := yaml.Unmarshal(data, &fixture); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if fixture.Name == "" {
			fixture.Name = filepath.Base(path)
		}
		out = append(out, fixture)
	}
	return out
}

func TestProgramFixtures(t *testing.T) {
	for _, fixture := range loadProgramFixtures(t) {
		t.Run(fixture.Name, func(t *testing.T) {
			engine := MustNewEngine(fixture.engineConfig())
			script, err := engine.Compile(fixture.Source)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			var out bytes.Buffer
			err = script.Run(context.Background(), &out)
			if fixture.Error.Type != "" {
				rtErr := requireRuntimeError(t, err, fixture.Error.Type)
				if fixture.Error.Contains != "" {
					requireErrorContains(t, rtErr, fixture.Error.Contains)
				}
			} else if err != nil {
				t.Fatalf("run: %v", err)
			}
			if out.String() != fixture.Stdout {
				t.Fatalf("stdout mismatch\nwant: %q\n got: %q", fixture.Stdout, out.String())
			}
		})
	}
}

// The same fixtures must behave identically after a trip through every AST format.
func TestProgramFixturesSurviveASTDocuments(t *testing.T) {
	for _, fixture := range loadProgramFixtures(t) {
		if fixture.Error.Type != "" {
			continue
		}
		for _, format := range []Format{FormatYAML, FormatJSON, FormatCBOR} {
			t.Run(fixture.Name+"/"+string(format), func(t *testing.T) {
				program, err := Parse(fixture.Source)
				if err != nil {
					t.Fatalf("parse: %v", err)
				}
				data, err := MarshalProgram(program, format)
				if err != nil {
					t.Fatalf("marshal: %v", err)
				}
				decoded, err := UnmarshalProgram(data, format)
				if err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				var out bytes.Buffer
				if err := MustNewEngine(fixture.engineConfig()).Load(decoded).Run(context.Background(), &out); err != nil {
					t.Fatalf("run: %v", err)
				}
				if out.String() != fixture.Stdout {
					t.Fatalf("stdout mismatch\nwant: %q\n got: %q", fixture.Stdout, out.String())
				}
			})
		}
	}
}
