// Package config manages application configuration from a YAML file,
// environment variables and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/euforicio/chatmd/internal/dialect"
	"github.com/euforicio/chatmd/internal/parse"
)

const envPrefix = "CHATMD_"

// Config holds runtime configuration for the converter CLI and server.
type Config struct {
	Dialect     string   `yaml:"dialect"`
	Frontmatter bool     `yaml:"frontmatter"`
	Extensions  []string `yaml:"extensions"`
	Output      string   `yaml:"output"`
	Watch       bool     `yaml:"watch"`
	Port        int      `yaml:"port"`
	Verbose     bool     `yaml:"verbose"`
	ConfigFile  string   `yaml:"-"`
}

// Default returns ready-to-use defaults prior to file/env/flag overrides.
func Default() Config {
	return Config{
		Dialect: "slack",
		Output:  "-",
		Port:    0, // 0 = auto-select random available port
	}
}

// RegisterFlags attaches the flags shared by every command to the provided FlagSet.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Dialect, "dialect", "d", cfg.Dialect, "target dialect ("+strings.Join(dialect.Names(), ", ")+")")
	fs.BoolVar(&cfg.Frontmatter, "frontmatter", cfg.Frontmatter, "strip YAML front matter and report it as metadata")
	fs.StringSliceVar(&cfg.Extensions, "ext", cfg.Extensions, "markdown extensions to enable (default gfm)")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable verbose logging")
}

// RegisterCLIFlags attaches the flags of the conversion command.
func RegisterCLIFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Output, "out", "o", cfg.Output, "output file (- for stdout)")
	fs.BoolVarP(&cfg.Watch, "watch", "w", cfg.Watch, "convert again whenever the input file changes")
}

// RegisterServerFlags attaches the flags of the HTTP server.
func RegisterServerFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to bind the HTTP server (0 = auto-assign, default: auto)")
}

// ApplyEnvOverrides reads supported environment variables and overrides cfg in place.
func ApplyEnvOverrides(cfg *Config) {
	applyStringEnv("DIALECT", func(v string) { cfg.Dialect = v })
	applyBoolEnv("FRONTMATTER", func(v bool) { cfg.Frontmatter = v })
	applyStringEnv("EXTENSIONS", func(v string) { cfg.Extensions = splitList(v) })
	applyStringEnv("OUT", func(v string) { cfg.Output = v })
	applyBoolEnv("WATCH", func(v bool) { cfg.Watch = v })
	applyIntEnv("PORT", func(v int) { cfg.Port = v })
	applyBoolEnv("VERBOSE", func(v bool) { cfg.Verbose = v })
	applyStringEnv("CONFIG", func(v string) { cfg.ConfigFile = v })
}

func applyStringEnv(key string, apply func(string)) {
	if raw, ok := lookupNonEmpty(key); ok {
		apply(raw)
	}
}

func applyIntEnv(key string, apply func(int)) {
	if raw, ok := lookupNonEmpty(key); ok {
		if value, err := strconv.Atoi(raw); err == nil {
			apply(value)
		}
	}
}

func applyBoolEnv(key string, apply func(bool)) {
	if raw, ok := lookupNonEmpty(key); ok {
		if value, err := strconv.ParseBool(raw); err == nil {
			apply(value)
		}
	}
}

func lookupNonEmpty(key string) (string, bool) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFile decodes the YAML file at path over cfg. Environment variables
// referenced in the file are expanded first.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// ApplyFile layers cfg.ConfigFile underneath the environment and any flag
// set explicitly on fs, so the precedence is defaults, file, env, flags.
func ApplyFile(fs *pflag.FlagSet, cfg *Config) error {
	if cfg.ConfigFile == "" {
		return nil
	}

	file := Default()
	if err := LoadFile(cfg.ConfigFile, &file); err != nil {
		return err
	}
	ApplyEnvOverrides(&file)

	keep := func(flag string) bool {
		return fs != nil && fs.Lookup(flag) != nil && fs.Changed(flag)
	}
	if !keep("dialect") {
		cfg.Dialect = file.Dialect
	}
	if !keep("frontmatter") {
		cfg.Frontmatter = file.Frontmatter
	}
	if !keep("ext") {
		cfg.Extensions = file.Extensions
	}
	if !keep("out") {
		cfg.Output = file.Output
	}
	if !keep("watch") {
		cfg.Watch = file.Watch
	}
	if !keep("port") {
		cfg.Port = file.Port
	}
	if !keep("verbose") {
		cfg.Verbose = file.Verbose
	}
	return nil
}

// ParseOptions returns the parser options cfg selects.
func (c Config) ParseOptions() parse.Options {
	return parse.Options{
		Extensions:  append([]string(nil), c.Extensions...),
		Frontmatter: c.Frontmatter,
	}
}

// Finalize validates and normalizes the configuration.
func Finalize(cfg *Config) error {
	style, ok := dialect.Lookup(cfg.Dialect)
	if !ok {
		return fmt.Errorf("invalid dialect %q (want one of %s)", cfg.Dialect, strings.Join(dialect.Names(), ", "))
	}
	cfg.Dialect = style.Name

	if err := parse.ValidateExtensions(cfg.Extensions); err != nil {
		return fmt.Errorf("invalid extensions: %w", err)
	}

	// Allow port 0 for dynamic allocation, otherwise validate range
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}

	if cfg.Output == "" {
		cfg.Output = "-"
	}
	if cfg.Output != "-" {
		out, err := filepath.Abs(cfg.Output)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		cfg.Output = out
	}

	return nil
}
