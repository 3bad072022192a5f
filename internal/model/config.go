package model

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/syncdesk/deskmigrate/internal/credential"
)

// keyringPrefix marks a token value that should be resolved through the
// OS keyring instead of being used verbatim.
const keyringPrefix = "keyring:"

// RunConfig holds everything one sync run needs: the provider selection,
// its credentials, the date window, and the target store location. The
// host supplies these as a flat key-value map; the YAML loader exists for
// standalone invocations.
type RunConfig struct {
	// Provider selects the source system ("zendesk", "helpscout",
	// "happyfox").
	Provider string `mapstructure:"provider" yaml:"provider"`

	// BaseURL is the root URL of the provider API. For Zendesk it is
	// derived from Subdomain when empty.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Subdomain is the Zendesk account subdomain.
	Subdomain string `mapstructure:"subdomain" yaml:"subdomain"`

	// Username is the basic-auth user (Zendesk agent email, HappyFox
	// API key). Unused for bearer-token providers.
	Username string `mapstructure:"username" yaml:"username"`

	// Token is the API token, bearer token, or auth code. A value of
	// the form "keyring:<key>" is resolved through the system keyring.
	Token string `mapstructure:"token" yaml:"token"`

	// StartDate and EndDate bound the run ("2006-01-02"); either may
	// be empty for an unbounded side.
	StartDate string `mapstructure:"start_date" yaml:"start_date"`
	EndDate   string `mapstructure:"end_date" yaml:"end_date"`

	// DBPath locates the target store SQLite database.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// OperatorEmail and OperatorName identify the person running the
	// migration; tickets without a customer are attributed to them.
	OperatorEmail string `mapstructure:"operator_email" yaml:"operator_email"`
	OperatorName  string `mapstructure:"operator_name" yaml:"operator_name"`
}

// ParamsFromMap builds a RunConfig from the host's flat key-value
// parameters.
func ParamsFromMap(params map[string]string) RunConfig {
	return RunConfig{
		Provider:      params["provider"],
		BaseURL:       params["base_url"],
		Subdomain:     params["subdomain"],
		Username:      params["username"],
		Token:         params["token"],
		StartDate:     params["start_date"],
		EndDate:       params["end_date"],
		DBPath:        params["db_path"],
		OperatorEmail: params["operator_email"],
		OperatorName:  params["operator_name"],
	}
}

// LoadConfig reads a RunConfig from the given YAML file path using Viper.
func LoadConfig(path string) (*RunConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("db_path", "deskmigrate.db")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &RunConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// DateRange builds the run's date window from the configured bounds.
func (c *RunConfig) DateRange() (DateRange, error) {
	return NewDateRange(c.StartDate, c.EndDate)
}

// ResolveToken replaces a "keyring:<key>" token value with the secret
// stored in the system keyring. Plain token values pass through unchanged.
func (c *RunConfig) ResolveToken() error {
	if !strings.HasPrefix(c.Token, keyringPrefix) {
		return nil
	}

	key := strings.TrimPrefix(c.Token, keyringPrefix)
	secret, err := credential.Get(key)
	if err != nil {
		return fmt.Errorf("resolving token from keyring: %w", err)
	}

	c.Token = secret
	return nil
}
