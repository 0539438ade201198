// Package config loads and validates mirrorsync configuration: the YAML
// config file describing both remote systems and the environment
// variables carrying their credentials.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/mirrorsync/pkg/errors"
	"github.com/agentstation/mirrorsync/pkg/workspace"
)

// Environment variables carrying API credentials. Credential values are
// never written to the config file and never logged.
const (
	EnvTrackerToken    = "TRACKER_TOKEN"
	EnvWorkspaceAPIKey = "WORKSPACE_API_KEY"
)

// Defaults applied when the config file leaves a value unset.
const (
	DefaultConcurrency = 4
	DefaultDataDir     = "./data"
)

// Config is the full mirrorsync configuration as read from the YAML
// config file.
type Config struct {
	Tracker       Tracker                 `yaml:"tracker"`
	Workspace     Workspace               `yaml:"workspace"`
	Fields        Fields                  `yaml:"fields"`
	Sync          Sync                    `yaml:"sync"`
	StatusMapping workspace.StatusMapping `yaml:"statusMapping"`
}

// Tracker locates the source-of-truth issue tracker and scopes which
// issues get mirrored.
type Tracker struct {
	BaseURL   string `yaml:"baseUrl"`
	Project   string `yaml:"project"`
	IssueType string `yaml:"issueType"`
}

// Workspace locates the mirror workspace.
type Workspace struct {
	BaseURL string `yaml:"baseUrl"`
	ID      string `yaml:"id"`
}

// Fields names the workspace fields mirrorsync manages.
type Fields struct {
	Key  string `yaml:"key"`
	Team Team   `yaml:"team"`
}

// Team is the optional select field stamped on every mirrored item.
type Team struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Sync tunes pass behavior.
type Sync struct {
	Concurrency int    `yaml:"concurrency"`
	DataDir     string `yaml:"dataDir"`
}

// Default returns a config with defaults applied and no remotes
// configured.
func Default() *Config {
	return &Config{
		Sync: Sync{
			Concurrency: DefaultConcurrency,
			DataDir:     DefaultDataDir,
		},
	}
}

// Load reads and validates the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sync.Concurrency <= 0 {
		c.Sync.Concurrency = DefaultConcurrency
	}
	if c.Sync.DataDir == "" {
		c.Sync.DataDir = DefaultDataDir
	}
}

// Validate checks that both remote systems are fully located. Any
// violation is a fatal precondition: no pass starts on a partial config.
func (c *Config) Validate() error {
	switch {
	case c.Tracker.BaseURL == "":
		return errors.NewConfigError("tracker", "baseUrl is required", nil)
	case c.Tracker.Project == "":
		return errors.NewConfigError("tracker", "project is required", nil)
	case c.Workspace.BaseURL == "":
		return errors.NewConfigError("workspace", "baseUrl is required", nil)
	case c.Workspace.ID == "":
		return errors.NewConfigError("workspace", "id is required", nil)
	}
	if c.Fields.Team.Name == "" && c.Fields.Team.Value != "" {
		return errors.NewConfigError("fields", "team.value is set but team.name is not", nil)
	}
	return nil
}

// FieldConfig converts the configured field names into the shape the
// resolution layer consumes.
func (c *Config) FieldConfig() workspace.FieldConfig {
	return workspace.FieldConfig{
		KeyField:  c.Fields.Key,
		TeamField: c.Fields.Team.Name,
	}
}

// Credentials holds the API credentials for both remote systems, read
// from the environment.
type Credentials struct {
	TrackerToken    string
	WorkspaceAPIKey string
}

// LoadCredentials reads both credentials from the environment (via Viper,
// so .env files loaded into it count). Both are required.
func LoadCredentials() (*Credentials, error) {
	creds := &Credentials{
		TrackerToken:    GetString(EnvTrackerToken),
		WorkspaceAPIKey: GetString(EnvWorkspaceAPIKey),
	}

	if creds.TrackerToken == "" {
		return nil, errors.NewConfigError("credentials",
			"environment variable "+EnvTrackerToken+" is not set", errors.ErrAPIKeyRequired)
	}
	if creds.WorkspaceAPIKey == "" {
		return nil, errors.NewConfigError("credentials",
			"environment variable "+EnvWorkspaceAPIKey+" is not set", errors.ErrAPIKeyRequired)
	}
	return creds, nil
}
