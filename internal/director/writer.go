package director

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WriteScript writes a timing script to a YAML file
func WriteScript(script *Script, path string) error {
	return writeYAML(script, path)
}

// ReadScript reads a timing script from a YAML file
func ReadScript(path string) (*Script, error) {
	var script Script
	if err := readYAML(path, &script); err != nil {
		return nil, err
	}
	return &script, nil
}

// WriteTimeline writes a timeline manifest to a YAML file
func WriteTimeline(timeline *Timeline, path string) error {
	return writeYAML(timeline, path)
}

// ReadTimeline reads a timeline manifest from a YAML file
func ReadTimeline(path string) (*Timeline, error) {
	var timeline Timeline
	if err := readYAML(path, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

func writeYAML(v any, path string) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, v)
}
