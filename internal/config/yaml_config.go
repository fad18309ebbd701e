package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"outreach/internal/models"
)

// YAMLConfig represents the structure of the config.yaml file.
type YAMLConfig struct {
	Campaigns []CampaignSeed `yaml:"campaigns"`
	Defaults  DefaultsConfig `yaml:"defaults"`
}

// CampaignSeed is a campaign created at startup when no campaign of the
// same name exists.
type CampaignSeed struct {
	Name         string `yaml:"name"`
	Keywords     string `yaml:"keywords"`
	CronAddCount *int   `yaml:"cron_add_count,omitempty"`
}

// DefaultsConfig defines default settings.
type DefaultsConfig struct {
	ArchiveReason string `yaml:"archive_reason"` // Reason recorded on archive snapshots
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return loadYAMLFile(getEnv("CONFIG_FILE", "config.yaml"))
}

func loadYAMLFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CampaignInputs converts the seeds for the campaign service.
func (c *YAMLConfig) CampaignInputs() []models.CampaignInput {
	if c == nil {
		return nil
	}
	inputs := make([]models.CampaignInput, 0, len(c.Campaigns))
	for _, s := range c.Campaigns {
		inputs = append(inputs, models.CampaignInput{
			Name:             s.Name,
			OriginalKeywords: s.Keywords,
			CronAddCount:     s.CronAddCount,
		})
	}
	return inputs
}

// ResolveArchiveReason returns the environment's archive reason when set, then the
// file's.
func (c *Config) ResolveArchiveReason(y *YAMLConfig) string {
	if c.ArchiveReason != "" {
		return c.ArchiveReason
	}
	if y != nil {
		return y.Defaults.ArchiveReason
	}
	return ""
}
