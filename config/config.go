package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sanction-bot/model"
)

const (
	DefaultDatabasePath  = "data/sanctions.db"
	DefaultSweepInterval = 5 * time.Minute
	DefaultConfigDir     = "data"
	configName           = "sanction_config"
)

var ErrMissingToken = errors.New("BOT_TOKEN environment variable not set")

// Load loads the configuration from .env, the environment and the optional
// data/sanction_config.{yaml,json,toml} file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}
	return LoadFrom(DefaultConfigDir)
}

// LoadFrom reads the sanction config file from dir. Environment variables win
// over file values.
func LoadFrom(dir string) (*model.Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.AddConfigPath(dir)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("sweep_interval", DefaultSweepInterval)
	v.SetDefault("effect_timeout", 30*time.Second)
	v.SetDefault("id_max_attempts", 5)

	bindings := map[string]string{
		"bot_token":          "BOT_TOKEN",
		"app_id":             "APP_ID",
		"log_channel_id":     "LOG_CHANNEL_ID",
		"database_path":      "DATABASE_PATH",
		"sweep_interval":     "SANCTION_SWEEP_INTERVAL",
		"effect_timeout":     "SANCTION_EFFECT_TIMEOUT",
		"id_max_attempts":    "SANCTION_ID_MAX_ATTEMPTS",
		"admin_role_ids":     "ADMIN_ROLE_IDS",
		"developer_user_ids": "DEVELOPER_USER_IDS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", configName, err)
		}
		log.Printf("Warning: %s not found in %s, using environment only.", configName, dir)
	}

	token := v.GetString("bot_token")
	if token == "" {
		return nil, ErrMissingToken
	}

	cfg := &model.Config{
		BotToken:         token,
		AppID:            v.GetString("app_id"),
		LogChannelID:     v.GetString("log_channel_id"),
		DatabasePath:     v.GetString("database_path"),
		DeveloperUserIDs: splitIDs(v.GetString("developer_user_ids")),
		AdminRoleIDs:     splitIDs(v.GetString("admin_role_ids")),
		SweepInterval:    v.GetDuration("sweep_interval"),
		EffectTimeout:    v.GetDuration("effect_timeout"),
		IDMaxAttempts:    v.GetInt("id_max_attempts"),
		ServerConfigs:    make(map[string]model.ServerConfig),
	}
	if cfg.LogChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, logging will be disabled")
	}
	if cfg.SweepInterval <= 0 {
		log.Printf("Warning: invalid sweep interval, using default of %v", DefaultSweepInterval)
		cfg.SweepInterval = DefaultSweepInterval
	}

	var guilds map[string]model.ServerConfig
	if err := v.UnmarshalKey("guilds", &guilds); err != nil {
		return nil, fmt.Errorf("failed to parse guild settings: %w", err)
	}
	for guildID, sc := range guilds {
		if sc.GuildID == "" {
			sc.GuildID = guildID
		}
		cfg.ServerConfigs[sc.GuildID] = sc
	}

	return cfg, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
