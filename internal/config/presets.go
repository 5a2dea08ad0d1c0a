package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/predprey/internal/models"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// preset builds the default config and applies mutate to it.
func preset(mutate func(c *Config)) func() *Config {
	return func() *Config {
		c := DefaultConfig()
		mutate(c)
		return c
	}
}

// presets maps names to constructors so every lookup gets a fresh config.
var presets = map[string]func() *Config{
	"default": DefaultConfig,
	"oscillating": preset(func(c *Config) {
		c.Params.K = 30
		c.Params.D = 0.05
		c.TMax = 200
		c.Points = 2000
	}),
	"predator-free": preset(func(c *Config) {
		c.InitState.Predator = 0
		c.TMax = 20
	}),
	"prey-free": preset(func(c *Config) {
		c.InitState.Prey = 0
		c.TMax = 20
	}),
	"strong-predation": preset(func(c *Config) {
		c.Params = models.Params{R: 1, K: 10, A: 2, H: 0.1, M: 0.4, C: 0.7, D: 0.1}
	}),
}

func GetPreset(name string) (*Config, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return build(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
