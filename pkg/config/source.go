package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigSource defines an interface for loading configuration from various sources.
type ConfigSource interface {
	Get(key string) (string, bool)
	GetWithDefault(key, defaultValue string) string
}

// EnvConfigSource loads configuration from environment variables.
type EnvConfigSource struct{}

// Get retrieves an environment variable.
func (e *EnvConfigSource) Get(key string) (string, bool) {
	val := os.Getenv(key)
	return val, val != ""
}

// GetWithDefault retrieves an environment variable or returns a default value.
func (e *EnvConfigSource) GetWithDefault(key, defaultValue string) string {
	if val, ok := e.Get(key); ok {
		return val
	}
	return defaultValue
}

// FileConfigSource loads configuration from a JSON or YAML file.
// Keys are looked up verbatim first and then as lower-case dotted paths,
// so HTTP_PORT matches both "HTTP_PORT: 8080" and "http: {port: 8080}".
type FileConfigSource struct {
	data map[string]interface{}
}

// NewFileConfigSource creates a new file-based config source.
func NewFileConfigSource(filePath string) (*FileConfigSource, error) {
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &data); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &data); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format %q, use .json, .yaml, or .yml", filePath)
	}

	return &FileConfigSource{data: data}, nil
}

// Get retrieves a value from the config file.
func (f *FileConfigSource) Get(key string) (string, bool) {
	if val, ok := f.data[key]; ok {
		return stringify(val), true
	}
	return f.lookup(strings.Split(strings.ToLower(key), "_"))
}

// lookup walks nested maps, letting a segment absorb the following ones
// so that UPLOAD_DIR can resolve to {"upload_dir": ...} or {"upload": {"dir": ...}}.
func (f *FileConfigSource) lookup(parts []string) (string, bool) {
	var walk func(current interface{}, parts []string) (string, bool)
	walk = func(current interface{}, parts []string) (string, bool) {
		if len(parts) == 0 {
			if _, isMap := current.(map[string]interface{}); isMap {
				return "", false
			}
			return stringify(current), true
		}
		m, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		for i := len(parts); i >= 1; i-- {
			if next, exists := m[strings.Join(parts[:i], "_")]; exists {
				if val, found := walk(next, parts[i:]); found {
					return val, true
				}
			}
		}
		return "", false
	}
	return walk(f.data, parts)
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return strings.Join(items, ",")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GetWithDefault retrieves a value from the config file or returns a default.
func (f *FileConfigSource) GetWithDefault(key, defaultValue string) string {
	if val, ok := f.Get(key); ok {
		return val
	}
	return defaultValue
}

// CompositeConfigSource checks multiple config sources in order.
type CompositeConfigSource struct {
	sources []ConfigSource
}

// NewCompositeConfigSource returns a source that consults sources in order.
func NewCompositeConfigSource(sources ...ConfigSource) *CompositeConfigSource {
	return &CompositeConfigSource{sources: sources}
}

// Get retrieves a value from the first source that has it.
func (c *CompositeConfigSource) Get(key string) (string, bool) {
	for _, source := range c.sources {
		if val, ok := source.Get(key); ok {
			return val, true
		}
	}
	return "", false
}

// GetWithDefault retrieves a value from sources or returns default.
func (c *CompositeConfigSource) GetWithDefault(key, defaultValue string) string {
	if val, ok := c.Get(key); ok {
		return val
	}
	return defaultValue
}

// MapConfigSource serves values from a map. Useful for tests and CLI flag overrides.
type MapConfigSource map[string]string

// Get retrieves a non-empty value from the map.
func (m MapConfigSource) Get(key string) (string, bool) {
	val, ok := m[key]
	return val, ok && val != ""
}

// GetWithDefault retrieves a value from the map or returns default.
func (m MapConfigSource) GetWithDefault(key, defaultValue string) string {
	if val, ok := m.Get(key); ok {
		return val
	}
	return defaultValue
}
