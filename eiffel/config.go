package eiffel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the project configuration looked up by FindConfig.
const ConfigFileName = "eiffel.toml"

type configFile struct {
	Engine Config `toml:"engine"`
}

// LoadConfig reads the [engine] table of a TOML file. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return ParseConfig(path, data)
}

// ParseConfig decodes configuration data; name is used in error messages.
func ParseConfig(name string, data []byte) (Config, error) {
	var file configFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	return file.Engine, nil
}

// FindConfig walks up from startDir looking for eiffel.toml. It returns an empty
// path when none exists.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
