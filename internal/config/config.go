package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Whois         WhoisConfig
	Scheduler     SchedulerConfig
	Notifications NotificationsConfig
	Auth          AuthConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdleConns   int
}

type WhoisConfig struct {
	Timeout    time.Duration
	MaxRetries int
	// RatePerMinute caps outbound WHOIS lookups; registries throttle
	// aggressive clients.
	RatePerMinute int
}

type SchedulerConfig struct {
	CheckIntervalHours int
	DispatchInterval   time.Duration
	SummaryHour        int
	SummaryMinute      int
}

type NotificationsConfig struct {
	DefaultReminderDays []int
	SMTP                SMTPConfig
	Twilio              TwilioConfig
	Desktop             DesktopConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type DesktopConfig struct {
	Enabled bool
}

type AuthConfig struct {
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	TokenTTL      time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("DOMAINPING")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("database.maxconnections", 25)
	viper.SetDefault("database.maxidleconns", 5)
	viper.SetDefault("whois.timeout", "10s")
	viper.SetDefault("whois.maxretries", 3)
	viper.SetDefault("whois.rateperminute", 30)
	viper.SetDefault("scheduler.checkintervalhours", 24)
	viper.SetDefault("scheduler.dispatchinterval", "1h")
	viper.SetDefault("scheduler.summaryhour", 9)
	viper.SetDefault("scheduler.summaryminute", 0)
	viper.SetDefault("notifications.defaultreminderdays", []int{90, 30, 14, 7, 3, 1})
	viper.SetDefault("notifications.smtp.port", 587)
	viper.SetDefault("notifications.smtp.fromname", "DomainPing")
	viper.SetDefault("notifications.desktop.enabled", true)
	viper.SetDefault("auth.adminusername", "admin")
	viper.SetDefault("auth.tokenttl", "24h")

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Secrets come from the environment, never from the config file.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Auth.AdminPassword = pass
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		cfg.Notifications.SMTP.Password = pass
	}
	if token := os.Getenv("TWILIO_AUTH_TOKEN"); token != "" {
		cfg.Notifications.Twilio.AuthToken = token
	}

	return &cfg, nil
}
