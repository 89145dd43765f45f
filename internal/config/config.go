package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// SysfsRoot overrides the sysfs mount point, mainly for testing
	// against a captured tree.
	SysfsRoot string `yaml:"sysfs_root,omitempty"`

	// DBPath is the snapshot database location.
	DBPath string `yaml:"db_path,omitempty"`

	// Color: "auto" (TTY detection), "always", or "never".
	Color string `yaml:"color,omitempty"`

	// Nicknames override the SES subenclosure nickname per enclosure.
	Nicknames []Nickname `yaml:"nicknames,omitempty"`
}

type Nickname struct {
	SASAddress string `yaml:"sas_address"`
	Nickname   string `yaml:"nickname"`
}

var defaultConfig = Config{
	SysfsRoot: "/sys",
	Color:     "auto",
}

// Load reads the config from path, or from the default locations when
// path is empty. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		candidates := []string{
			"/etc/sasdevices/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/sasdevices/config.yaml"),
			"config.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	cfg := defaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}

	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = defaultConfig.SysfsRoot
	}
	if cfg.Color == "" {
		cfg.Color = defaultConfig.Color
	}

	return &cfg, nil
}

// NicknameFor returns the configured override for an enclosure address.
func (c *Config) NicknameFor(sasAddress string) (string, bool) {
	for _, n := range c.Nicknames {
		if n.SASAddress == sasAddress {
			return n.Nickname, true
		}
	}
	return "", false
}
