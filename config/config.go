// Package config loads the .enforcer configuration file.
//
// The file is TOML by default. A file ending in .yaml or .yml is decoded as
// YAML instead. Missing fields keep their defaults.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/jangler/enforcer/check"
	"github.com/jangler/enforcer/clean"
)

// FileNames lists the configuration files looked up in the search root, in
// order of preference.
var FileNames = []string{".enforcer", ".enforcer.toml", ".enforcer.yaml", ".enforcer.yml"}

// ErrInvalid marks configuration values that cannot be used.
var ErrInvalid = eris.New("invalid configuration")

// Config holds the settings for one run.
type Config struct {
	Ignore       []string `toml:"ignore" yaml:"ignore"`
	Endings      []string `toml:"endings" yaml:"endings"`
	Globs        []string `toml:"globs,omitempty" yaml:"globs,omitempty"`
	TabWidth     int      `toml:"tab_width" yaml:"tab_width"`
	LineLength   int      `toml:"line_length" yaml:"line_length"`
	Tabs         bool     `toml:"tabs" yaml:"tabs"`
	CRLF         bool     `toml:"crlf" yaml:"crlf"`
	FinalNewline bool     `toml:"final_newline" yaml:"final_newline"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Ignore:   []string{".git", ".bake", ".repo"},
		Endings:  []string{".c", ".cpp", ".h"},
		TabWidth: clean.DefaultTabStop,
	}
}

// Parse decodes a configuration from p on top of the defaults. yamlSyntax
// selects YAML instead of TOML.
func Parse(p []byte, yamlSyntax bool) (Config, error) {
	cfg := Default()
	if yamlSyntax {
		dec := yaml.NewDecoder(bytes.NewReader(p))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return cfg, eris.Wrap(err, "could not parse the config")
		}
	} else {
		md, err := toml.Decode(string(p), &cfg)
		if err != nil {
			return cfg, eris.Wrap(err, "could not parse the config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, eris.Wrapf(ErrInvalid, "unknown key %q", undecoded[0].String())
		}
	}
	return cfg, cfg.Validate()
}

// Load reads the configuration file at path.
func Load(path string) (Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return Default(), eris.Wrapf(err, "failed to read config %s", path)
	}
	cfg, err := Parse(p, isYAML(path))
	if err != nil {
		return cfg, eris.Wrapf(err, "in %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Find loads the first configuration file from FileNames inside dir, or the
// defaults if there is none.
func Find(dir string) (Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Default(), eris.Wrapf(err, "failed to stat %s", path)
		}
		if info.Mode().IsRegular() {
			return Load(path)
		}
	}
	return Default(), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if c.TabWidth < 1 {
		return eris.Wrapf(ErrInvalid, "tab_width must be at least 1, got %d", c.TabWidth)
	}
	if c.LineLength < 0 {
		return eris.Wrapf(ErrInvalid, "line_length must not be negative, got %d", c.LineLength)
	}
	if len(c.Endings) == 0 && len(c.Globs) == 0 {
		return eris.Wrap(ErrInvalid, "no endings or globs to match files with")
	}
	for _, pattern := range c.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			return eris.Wrapf(ErrInvalid, "%s seems not to be a valid pattern: %v", pattern, err)
		}
	}
	for _, pattern := range c.Globs {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return eris.Wrapf(ErrInvalid, "%s seems not to be a valid pattern: %v", pattern, err)
		}
	}
	return nil
}

// CheckOptions returns the options for package check.
func (c Config) CheckOptions() check.Options {
	return check.Options{
		Tabs:          c.Tabs,
		MaxLineLength: c.LineLength,
		TabStop:       c.TabWidth,
		CRLF:          c.CRLF,
		FinalNewline:  c.FinalNewline,
	}
}

// CleanOptions returns the options for package clean.
func (c Config) CleanOptions() clean.Options {
	return clean.Options{TabStop: c.TabWidth}
}

// Encode writes c as TOML.
func Encode(w io.Writer, c Config) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return eris.Wrap(err, "failed to encode config")
	}
	return nil
}
