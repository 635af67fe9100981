package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env          string `env:"ENV" envDefault:"development"`
	Port         string `env:"PORT" envDefault:"3000"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./database.db"`
	StaticDir    string `env:"STATIC_DIR" envDefault:"./public"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"console"` // json or console

	// Zero means unbounded.
	MaxNameLength    int `env:"MAX_NAME_LENGTH" envDefault:"0"`
	MaxRequestLength int `env:"MAX_REQUEST_LENGTH" envDefault:"0"`

	// Requests per minute per IP on POST /submit. Zero disables the limiter.
	SubmitRateLimit int `env:"SUBMIT_RATE_LIMIT" envDefault:"0"`

	// When set, /events answers 500 on storage failure instead of 200 [].
	EventsStrictErrors bool `env:"EVENTS_STRICT_ERRORS" envDefault:"false"`

	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`
	CalendarName      string `env:"CALENDAR_NAME" envDefault:"Prayer Requests"`

	// UTF-8 TrueType font for the PDF export. Empty uses core Helvetica.
	PDFFontPath string `env:"PDF_FONT_PATH"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
