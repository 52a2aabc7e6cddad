package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/utils"
)

// Config is the process configuration. Values come from an optional YAML
// file, with environment variables taking precedence.
type Config struct {
	Port            string   `yaml:"port"`
	AllowOrigins    []string `yaml:"allow_origins"`
	JWTSecretKey    string   `yaml:"jwt_secret_key"`
	AccessTokenTTL  int      `yaml:"access_token_ttl"`
	RefreshTokenTTL int      `yaml:"refresh_token_ttl"`
	RoadmapDataDir  string   `yaml:"roadmap_data_dir"`
}

// Load reads the YAML file named by CONFIG_PATH (default config.yaml) when it
// exists, then applies env overrides. A missing file is not an error.
func Load(log *logger.Logger) (*Config, error) {
	cfg := &Config{
		Port:            "8080",
		JWTSecretKey:    "defaultsecret",
		AccessTokenTTL:  3600,
		RefreshTokenTTL: 86400,
		RoadmapDataDir:  "roadmap_data",
	}

	path := utils.GetEnv("CONFIG_PATH", "config.yaml", log)
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Info("no config file, using env and defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read config %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.JWTSecretKey, log)
	cfg.AccessTokenTTL = utils.GetEnvAsInt("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL, log)
	cfg.RefreshTokenTTL = utils.GetEnvAsInt("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL, log)
	cfg.RoadmapDataDir = utils.GetEnv("ROADMAP_DATA_DIR", cfg.RoadmapDataDir, log)
	return cfg, nil
}
