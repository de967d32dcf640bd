package toolutils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml"
)

// ReadConfig decodes a configuration file into dest.
// Files ending in .toml are read as TOML, anything else as YAML.
// Unknown keys are rejected in both formats.
func ReadConfig(dest any, file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to open configuration file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(file), ".toml") {
		tree, err := toml.LoadBytes(src)
		if err != nil {
			return fmt.Errorf("unable to parse configuration file: %w", err)
		}
		// decode through the YAML path so that struct tags and strictness match
		if src, err = yaml.Marshal(tree.ToMap()); err != nil {
			return fmt.Errorf("unable to convert configuration file: %w", err)
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(src), yaml.Strict())
	if err = dec.Decode(dest); err != nil {
		return fmt.Errorf("unable to parse configuration file: %w", err)
	}
	return nil
}

// ReadYaml reads a configuration file and exits the process on failure.
func ReadYaml(dest any, file string) {
	if err := ReadConfig(dest, file); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(3)
	}
}
