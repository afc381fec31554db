package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Config is everything the server needs at boot. Values come from a YAML
// file first, then environment variables override the secrets so that a
// checked-in config never has to carry credentials.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		MaxConns int    `yaml:"maxConns"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`
	Directory struct {
		BaseURL string `yaml:"baseUrl"`
		Token   string `yaml:"token"`
	} `yaml:"directory"`
	Slack struct {
		Token          string `yaml:"token"`
		InfoChannelID  string `yaml:"infoChannelId"`
		ErrorChannelID string `yaml:"errorChannelId"`
	} `yaml:"slack"`
	Email struct {
		Sender string `yaml:"sender"`
	} `yaml:"email"`
}

var (
	once    sync.Once
	loaded  *Config
	loadErr error
)

// Load reads config.yaml (path overridable via CHECKINBLAZE_CONFIG) and
// applies environment overrides. The result is cached for the process.
func Load(ctx context.Context) (*Config, error) {
	once.Do(func() {
		path := os.Getenv("CHECKINBLAZE_CONFIG")
		if path == "" {
			path = "config.yaml"
		}

		cfg := &Config{}
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				loadErr = fmt.Errorf("unmarshal yaml: %w", err)
				return
			}
		}

		applyEnvOverrides(cfg)

		if cfg.Auth.JWTSecret == "" {
			if secret, err := loadSSMParameter(ctx, "checkinblaze-jwt-secret"); err == nil {
				cfg.Auth.JWTSecret = secret
			}
		}

		if cfg.Server.Addr == "" {
			cfg.Server.Addr = ":8080"
		}
		if cfg.Database.Driver == "" {
			cfg.Database.Driver = "sqlite"
		}
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = "checkinblaze.db"
		}
		if cfg.Database.MaxConns == 0 {
			cfg.Database.MaxConns = 10
		}

		loaded = cfg
	})
	return loaded, loadErr
}

func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"SERVER_ADDR":            &cfg.Server.Addr,
		"DB_DRIVER":              &cfg.Database.Driver,
		"DB_DSN":                 &cfg.Database.DSN,
		"JWT_SECRET":             &cfg.Auth.JWTSecret,
		"DIRECTORY_BASE_URL":     &cfg.Directory.BaseURL,
		"DIRECTORY_TOKEN":        &cfg.Directory.Token,
		"SLACK_TOKEN":            &cfg.Slack.Token,
		"SLACK_INFO_CHANNEL_ID":  &cfg.Slack.InfoChannelID,
		"SLACK_ERROR_CHANNEL_ID": &cfg.Slack.ErrorChannelID,
		"EMAIL_SENDER":           &cfg.Email.Sender,
	}
	for key, target := range overrides {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
}

func loadSSMParameter(ctx context.Context, name string) (string, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter: %w", err)
	}
	return *out.Parameter.Value, nil
}
