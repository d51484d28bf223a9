package rushx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix        = "RUSHX"
	defaultTokenFile = "tokens.json"
	defaultLogLevel  = "info"
)

// Config captures runtime configuration for an SDK consumer: endpoint bases,
// the app name scoping durable tokens, and logging.
type Config struct {
	APIBaseURL string
	WSBaseURL  string
	AppName    string
	TokenPath  string
	LogLevel   string
}

// NewViper returns a viper instance with defaults and env bindings
// configured. Environment variables use the RUSHX_ prefix, e.g.
// RUSHX_API_BASE_URL.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper
// instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("api.base_url", DefaultBaseURL)
	configViper.SetDefault("ws.base_url", DefaultWSBaseURL)
	configViper.SetDefault("app.name", "customer")
	configViper.SetDefault("token.path", defaultTokenPath())
	configViper.SetDefault("log.level", defaultLogLevel)
}

// LoadConfig parses runtime configuration from viper.
func LoadConfig(configViper *viper.Viper) (Config, error) {
	cfg := Config{
		APIBaseURL: configViper.GetString("api.base_url"),
		WSBaseURL:  configViper.GetString("ws.base_url"),
		AppName:    configViper.GetString("app.name"),
		TokenPath:  configViper.GetString("token.path"),
		LogLevel:   configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if strings.TrimSpace(c.WSBaseURL) == "" {
		return fmt.Errorf("ws.base_url is required")
	}
	if strings.TrimSpace(c.AppName) == "" {
		return fmt.Errorf("app.name is required")
	}
	return nil
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return defaultTokenFile
	}
	return filepath.Join(dir, "rushx", defaultTokenFile)
}
