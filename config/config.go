package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/powerhour/spotprices-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If assigned, the server serves templates and static files from this
	// directory instead of the embedded ones. Useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Countries shown on the live dashboard ticker, default: ["nl", "de", "be"]
	TickerCountries []string `mapstructure:"ticker_countries"`
}

type AppConfigDatabase struct {
	// Path to the SQLite file used for the log sink.
	Path string
}

type AppConfigCache struct {
	// Raw price cache TTL in minutes, default: 60 (upstream publishes
	// hourly prices, so anything shorter just burns requests)
	TtlMinutes *int `mapstructure:"ttl_minutes"`
}

func (c AppConfigCache) GetTTL() time.Duration {
	if c.TtlMinutes == nil || *c.TtlMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(*c.TtlMinutes) * time.Minute
}

type AppConfigUpstream struct {
	// Security token for the ENTSO-E transparency platform. When empty the
	// entsoe source is left out of the fallback chain.
	EntsoeToken string `mapstructure:"entsoe_token"`
}

type AppConfigPrewarm struct {
	// Country codes whose today/next24h windows are fetched ahead of
	// traffic by the hourly task, e.g. ["nl", "de"]
	Countries []string
	RunAt     *string `mapstructure:"run_at"`
}

func (p AppConfigPrewarm) GetRunAt() string {
	if p.RunAt == nil {
		return "@hourly"
	}
	return *p.RunAt
}

type AppConfigMqtt struct {
	Host        string
	Port        int16
	Username    string
	Password    string
	TopicPrefix *string `mapstructure:"topic_prefix"`
}

// Enabled reports whether price publishing over MQTT is configured at all.
func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "spotprices"
	}
	return *m.TopicPrefix
}

type AppConfigLogging struct {
	// Min log level for database: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for the console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Database AppConfigDatabase
	Cache    AppConfigCache
	Upstream AppConfigUpstream
	Prewarm  AppConfigPrewarm
	Mqtt     AppConfigMqtt
	Logging  AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}
