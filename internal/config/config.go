package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SchedulerConfig struct {
	// Durations are strings ("60s", "2m"); see ParseDurationOrDefault.
	FineInterval      string `yaml:"fine_interval"`
	CoarseAt          string `yaml:"coarse_at"` // "HH:MM" local time
	Tolerance         string `yaml:"minute_before_tolerance"`
	SuppressionWindow string `yaml:"suppression_window"`
	CatchupDelay      string `yaml:"catchup_delay"`
	Timezone          string `yaml:"timezone"` // IANA name; empty = system local
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.JWTSecret == "" {
		panic("auth.jwt_secret is required in config.yaml")
	}
	if cfg.Scheduler.CoarseAt == "" {
		cfg.Scheduler.CoarseAt = "08:00"
	}
	return &cfg
}
