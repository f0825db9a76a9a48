package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"median/models"
)

//go:embed fixtures/seed.yaml
var defaultSeed []byte

// Seed is the initial content of a Store.
type Seed struct {
	Namespaces []models.Namespace        `json:"namespaces" yaml:"namespaces"`
	Types      []models.TypeDef          `json:"types" yaml:"types"`
	Validators []models.Validator        `json:"validators" yaml:"validators"`
	Fields     []models.Field            `json:"fields" yaml:"fields"`
	Objects    []models.ObjectDefinition `json:"objects" yaml:"objects"`
	Endpoints  []models.Endpoint         `json:"endpoints" yaml:"endpoints"`
	Tags       []models.EndpointTag      `json:"tags" yaml:"tags"`
}

// DefaultSeed returns the builtin fixtures: the global namespace, the
// builtin types and validators, and a small sample schema.
func DefaultSeed() (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(defaultSeed, &seed); err != nil {
		return Seed{}, fmt.Errorf("failed to parse builtin seed: %w", err)
	}
	return seed, nil
}

// ParseSeed decodes fixture data. format is "json" or "yaml".
func ParseSeed(data []byte, format string) (Seed, error) {
	var seed Seed
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &seed); err != nil {
			return Seed{}, fmt.Errorf("failed to parse json seed: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return Seed{}, fmt.Errorf("failed to parse yaml seed: %w", err)
		}
	default:
		return Seed{}, fmt.Errorf("unsupported seed format %q", format)
	}
	return seed, nil
}

// LoadSeedFile reads fixtures from path; the extension picks the format.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data, strings.TrimPrefix(filepath.Ext(path), "."))
}
