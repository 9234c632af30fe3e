package cmd

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/flipboards/cslc/internal/translator"
)

// policyConfig mirrors translator.Options in YAML form, letting a config
// file override the reference defaults without repeating every flag on
// the command line.
type policyConfig struct {
	LazyBool          *bool `yaml:"lazy_bool"`
	PointerArithmetic *bool `yaml:"pointer_arithmetic"`
	PointerToVal      *bool `yaml:"pointer_to_val"`
	ArrayPointerDecay *bool `yaml:"array_pointer_decay"`
	ExplicitType      *bool `yaml:"explicit_type"`
}

// loadTranslatorOptions starts from translator.DefaultOptions() and
// applies any fields set in path, which must be a YAML document shaped
// like policyConfig. An empty path returns the defaults untouched.
func loadTranslatorOptions(path string) (translator.Options, error) {
	opts := translator.DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	var cfg policyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return opts, err
	}
	if cfg.LazyBool != nil {
		opts.LazyBool = *cfg.LazyBool
	}
	if cfg.PointerArithmetic != nil {
		opts.PointerArithmetic = *cfg.PointerArithmetic
	}
	if cfg.PointerToVal != nil {
		opts.PointerToVal = *cfg.PointerToVal
	}
	if cfg.ArrayPointerDecay != nil {
		opts.ArrayPointerDecay = *cfg.ArrayPointerDecay
	}
	if cfg.ExplicitType != nil {
		opts.ExplicitType = *cfg.ExplicitType
	}
	return opts, nil
}
