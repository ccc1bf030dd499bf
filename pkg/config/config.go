package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"fantamorto/internal/repository"
	"fantamorto/internal/wikidata"
)

type Config struct {
	Repo     repository.Config `envPrefix:"REPO_"`
	Wikidata wikidata.Config   `envPrefix:"WIKIDATA_"`

	TelegramToken  string `env:"TELEGRAM_TOKEN" envDefault:""`
	DiscordToken   string `env:"DISCORD_TOKEN" envDefault:""`
	DiscordGuildID string `env:"DISCORD_GUILD_ID" envDefault:""`
	LogLevel       string `env:"LOGGER_LEVEL" envDefault:"debug"`

	AdminUserIDs   []string      `env:"ADMIN_USER_IDS" envSeparator:"," envDefault:""`
	TeamSize       int           `env:"TEAM_SIZE" envDefault:"10"`
	AllowDeadPicks bool          `env:"ALLOW_DEAD_PICKS" envDefault:"true"`
	BanListFile    string        `env:"BAN_LIST_FILE" envDefault:"ban_list.yaml"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`

	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:""`
	GoogleOwnerEmail      string `env:"GOOGLE_OWNER_EMAIL" envDefault:""`
}

func ReadEnvConfig(cfg *Config) error {
	return env.Parse(cfg)
}
