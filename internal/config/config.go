// Package config loads the switch's YAML tunables file, adapted from the
// Config/Load pair of pavelkim-tzsp_server's internal/config package,
// narrowed to the scheduler's own tunables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level tunables document for a ttswitchd instance.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Ports     []PortConfig    `yaml:"ports"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SchedulerConfig holds the classification and capacity tunables shared
// by every port.
type SchedulerConfig struct {
	TTPort      uint16 `yaml:"tt_port"`
	EthPTT      uint16 `yaml:"eth_p_tt"`
	MinCap      int    `yaml:"min_cap"`
	MaxFlows    int    `yaml:"max_flows"`
	AdvanceTime string `yaml:"advance_time"`
}

// PortConfig names one datapath port the scheduler should manage.
type PortConfig struct {
	Name        string `yaml:"name"`
	AdvanceTime string `yaml:"advance_time"`
}

// LoggingConfig mirrors the teacher package's LoggingConfig. Level and
// Format are passed to internal/logging; ConsoleOutput is parsed but not
// consumed.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	ConsoleOutput bool   `yaml:"console_output"`
}

// Load reads and parses path, filling in the same defaults a running
// switch would assume if the file omits them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Scheduler.TTPort == 0 {
		cfg.Scheduler.TTPort = 17224
	}
	if cfg.Scheduler.EthPTT == 0 {
		cfg.Scheduler.EthPTT = 0x88b6
	}
	if cfg.Scheduler.MinCap == 0 {
		cfg.Scheduler.MinCap = 4
	}
	if cfg.Scheduler.MaxFlows == 0 {
		cfg.Scheduler.MaxFlows = 255
	}
	if cfg.Scheduler.AdvanceTime == "" {
		cfg.Scheduler.AdvanceTime = "50us"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}
