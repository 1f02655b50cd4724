package config

import (
	"fmt"
	"time"
)

// Config represents a deckhand.yaml configuration file.
// All values are optional and act as defaults for deckhand flags.
// CLI flags always override config values.
type Config struct {
	// WorkDir is the working directory shared with the analysis agent.
	WorkDir string `yaml:"workdir"`
	// AgentBinary is the analysis agent executable.
	AgentBinary string `yaml:"agent_binary"`
	// Timeout is the hard deadline for one agent invocation.
	Timeout Duration `yaml:"timeout"`

	Discord  DiscordConfig  `yaml:"discord"`
	Drive    DriveConfig    `yaml:"drive"`
	Notifier NotifierConfig `yaml:"notifier"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Journal  JournalConfig  `yaml:"journal"`
}

// DiscordConfig holds chat boundary defaults from the config file.
type DiscordConfig struct {
	// Token is the bot token (usually ${DISCORD_TOKEN}).
	Token string `yaml:"token"`
	// ChannelID restricts the bot to one channel (0 or empty = any).
	ChannelID string `yaml:"channel_id"`
}

// DriveConfig holds document-host defaults from the config file.
type DriveConfig struct {
	// ClientPath is the OAuth2 client config file.
	ClientPath string `yaml:"client_path"`
	// TokenPath is the refreshable user token file.
	TokenPath string `yaml:"token_path"`
	// DeckTitle names uploaded decks (a date suffix is appended).
	DeckTitle string `yaml:"deck_title"`
}

// NotifierConfig holds notification defaults from the config file.
type NotifierConfig struct {
	// Type selects the notifier: "webhook", "redis", or "" (disabled).
	Type string `yaml:"type"`
	// URL is the webhook endpoint or Redis connection URL.
	URL string `yaml:"url"`
	// Recipient is the notification recipient address.
	Recipient string `yaml:"recipient"`
	// Channel is the Redis pub/sub channel (redis type only).
	Channel string `yaml:"channel,omitempty"`
	// Headers are custom HTTP headers (webhook type only).
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// ArchiveConfig holds artifact archive defaults from the config file.
type ArchiveConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	S3PathStyle  bool   `yaml:"s3_path_style"`
}

// JournalConfig holds run journal defaults from the config file.
type JournalConfig struct {
	// Path is the journal file (empty disables journaling).
	Path string `yaml:"path"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
