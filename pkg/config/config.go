// Package config parses printer configuration files (INI-style
// printer.cfg) and exposes the machine limits the post-processor needs.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config provides access to a parsed configuration file.
type Config struct {
	sections map[string]*Section
	order    []string // maintains section order
}

// New creates a new empty Config.
func New() *Config {
	return &Config{
		sections: make(map[string]*Section),
	}
}

// Load reads a configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return LoadString(string(data))
}

// LoadString parses a configuration from a string.
func LoadString(data string) (*Config, error) {
	c := New()
	var currentSection string
	var currentOptions map[string]string

	for lineNum, rawLine := range strings.Split(data, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		// Strip comments
		if idx := strings.IndexAny(line, "#;"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if currentSection != "" {
				c.addSection(currentSection, currentOptions)
			}
			header := strings.TrimSpace(line[1 : len(line)-1])
			if header == "" {
				return nil, fmt.Errorf("config: empty section header at line %d", lineNum+1)
			}
			currentSection = header
			currentOptions = make(map[string]string)
			continue
		}

		// Options before the first section are invalid in printer.cfg;
		// skip them the way the printer firmware does.
		if currentSection == "" {
			continue
		}

		// key: value or key = value
		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			kv = strings.SplitN(line, "=", 2)
		}
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			continue
		}
		currentOptions[key] = strings.TrimSpace(kv[1])
	}

	if currentSection != "" {
		c.addSection(currentSection, currentOptions)
	}
	return c, nil
}

// addSection adds or merges a section.
func (c *Config) addSection(name string, options map[string]string) {
	if existing, ok := c.sections[name]; ok {
		for k, v := range options {
			existing.options[strings.ToLower(k)] = v
		}
		return
	}
	c.sections[name] = newSection(name, options)
	c.order = append(c.order, name)
}

// GetSection returns a Section by name, or an error if not found.
func (c *Config) GetSection(name string) (*Section, error) {
	sec, ok := c.sections[name]
	if !ok {
		return nil, ErrMissingSection(name)
	}
	return sec, nil
}

// GetSectionOptional returns a Section if it exists, or nil.
func (c *Config) GetSectionOptional(name string) *Section {
	return c.sections[name]
}

// HasSection checks if a section exists.
func (c *Config) HasSection(name string) bool {
	_, ok := c.sections[name]
	return ok
}

// GetSectionNames returns all section names in file order.
func (c *Config) GetSectionNames() []string {
	result := make([]string, len(c.order))
	copy(result, c.order)
	return result
}
