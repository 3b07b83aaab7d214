package mapping

import (
	"fmt"
	"runtime"
	"strings"

	"class-migrator/internal/diagnostic"
)

// DefaultHelper is the simple name of the synthesized helper class.
const DefaultHelper = "MigrationHelper"

// DefaultTextExtensions lists the resource extensions rewritten as text.
var DefaultTextExtensions = []string{
	".xml", ".properties", ".txt", ".mf", ".json", ".yaml", ".yml", ".tld", ".jsp", ".html",
}

// Config is the YAML configuration of a migration run.
type Config struct {
	// Version of the configuration schema. Only "1" is supported.
	Version string `yaml:"version"`
	// Invert applies every mapping in the to -> from direction.
	Invert bool `yaml:"invert,omitempty"`
	// Helper is the simple name of the synthesized helper class.
	Helper string `yaml:"helper,omitempty"`
	// Workers bounds the number of resources transformed concurrently.
	Workers int `yaml:"workers,omitempty"`
	// TextExtensions lists the resource extensions rewritten as text.
	TextExtensions []string `yaml:"text_extensions,omitempty"`
	// Mappings in internal (slash separated) form.
	Mappings []Pair `yaml:"mappings"`
}

// Pair is one mapping as written in the configuration file.
type Pair struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Validate checks the settings that are not part of the mapping table.
func (c *Config) Validate() *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if c.Version != "1" {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported configuration version %q", c.Version), "version", "")
	}

	if c.Helper == "" || strings.ContainsAny(c.Helper, "/.;[") {
		res.AddError("invalid_helper_name", fmt.Sprintf("%q is not a valid simple class name", c.Helper), "helper", "")
	}

	if c.Workers < 0 {
		res.AddError("invalid_workers", fmt.Sprintf("workers must not be negative, got %d", c.Workers), "workers", "")
	}

	for _, ext := range c.TextExtensions {
		if !strings.HasPrefix(ext, ".") {
			res.AddError("invalid_extension", fmt.Sprintf("extension %q must start with a dot", ext), "text_extensions", ext)
		}
	}

	return res
}

// Table validates the configuration and builds the mapping table in the
// configured direction.
func (c *Config) Table() (*Table, error) {
	if diags := c.Validate(); diags.HasErrors() {
		return nil, &ConfigurationError{Diagnostics: *diags}
	}

	entries := make([]Entry, 0, len(c.Mappings))
	for _, p := range c.Mappings {
		entries = append(entries, Entry{From: []byte(p.From), To: []byte(p.To)})
	}

	t, err := NewTable(entries)
	if err != nil || !c.Invert {
		return t, err
	}

	return t.Invert()
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Config) {
	if c.Version == "" {
		c.Version = "1"
	}

	if c.Helper == "" {
		c.Helper = DefaultHelper
	}

	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	if len(c.TextExtensions) == 0 {
		c.TextExtensions = append([]string(nil), DefaultTextExtensions...)
	}

	for i, ext := range c.TextExtensions {
		c.TextExtensions[i] = strings.ToLower(ext)
	}
}
