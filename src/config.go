package wxsame

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Load a MessageCache's location and scoring configuration
 *		from a YAML file, the way the rest of this ecosystem's
 *		reference data ships as a data file rather than compiled
 *		constants.
 *
 *------------------------------------------------------------------*/

// LocationConfig is the YAML shape of a cache's configured place: a
// point plus the county FIPS code containing it. Lat/Lon are optional;
// omit both to configure a cache that never does polygon containment
// and always falls back to county matching.
type LocationConfig struct {
	Lat  *float64 `yaml:"lat"`
	Lon  *float64 `yaml:"lon"`
	FIPS string   `yaml:"fips"`
}

// CacheConfig is the YAML shape of a MessageCache's static
// configuration: where it is, and what priority each event code scores.
type CacheConfig struct {
	Location LocationConfig `yaml:"location"`
	Scores   map[string]int `yaml:"scores"`
}

// LoadCacheConfig reads and parses a CacheConfig YAML file from path.
func LoadCacheConfig(path string) (CacheConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CacheConfig{}, fmt.Errorf("wxsame: reading cache config %s: %w", path, err)
	}

	var cfg CacheConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CacheConfig{}, fmt.Errorf("wxsame: parsing cache config %s: %w", path, err)
	}
	if cfg.Location.FIPS == "" {
		return CacheConfig{}, fmt.Errorf("wxsame: cache config %s: location.fips is required", path)
	}
	return cfg, nil
}

// ToLocation converts the parsed config into the Location MessageCache
// expects.
func (c CacheConfig) ToLocation() Location {
	loc := Location{FIPS: c.Location.FIPS}
	if c.Location.Lat != nil && c.Location.Lon != nil {
		loc.Lat = *c.Location.Lat
		loc.Lon = *c.Location.Lon
		loc.HaveLL = true
	}
	return loc
}

// ScoreTable returns the configured score table: the configured
// overrides merged over DefaultMessageScores, so a config naming only
// one or two event codes still leaves every other code at its default
// priority rather than zeroing it out.
func (c CacheConfig) ScoreTable() map[string]int {
	merged := make(map[string]int, len(DefaultMessageScores))
	for code, score := range DefaultMessageScores {
		merged[code] = score
	}
	for code, score := range c.Scores {
		merged[code] = score
	}
	return merged
}
