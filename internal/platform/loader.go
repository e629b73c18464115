package platform

import (
	"fmt"
	"os"

	"github.com/maheshrc27/postflow/internal/models"
	"gopkg.in/yaml.v3"
)

type tablesFile struct {
	Platforms map[string]yaml.Node `yaml:"platforms"`
}

// Load returns the default tables with any platform entries in the YAML file at path
// laid over them. Fields missing from the file keep their default value.
func Load(path string) (Tables, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("reading platform tables: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Tables, error) {
	var file tablesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Tables{}, fmt.Errorf("parsing platform tables: %w", err)
	}

	profiles := defaultProfiles()
	for name, node := range file.Platforms {
		p, err := models.ParsePlatform(name)
		if err != nil {
			return Tables{}, err
		}
		profile := profiles[p]
		if err := node.Decode(&profile); err != nil {
			return Tables{}, fmt.Errorf("decoding %s profile: %w", p, err)
		}
		profiles[p] = profile
	}

	return NewTables(profiles), nil
}
