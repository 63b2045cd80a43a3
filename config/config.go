package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	scrumdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/scrum/domain"
	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Channel       ChannelConfig       `yaml:"channel"`
	Scrum         ScrumConfig         `yaml:"scrum"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL            string        `yaml:"url"`
	NKeySeed       string        `yaml:"nkey_seed"`
	QueueGroup     string        `yaml:"queue_group"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ChannelConfig describes the chat channel the scrum runs in.
type ChannelConfig struct {
	ID            string            `yaml:"id"`
	Markers       channel.MarkerSet `yaml:"markers"`
	RatePerSecond float64           `yaml:"rate_per_second"`
	Burst         int               `yaml:"burst"`
}

// ScrumConfig holds the poll schedule. NotifyAt and CloseAt accept loose
// times such as "3am", "10 pm" or "22".
type ScrumConfig struct {
	NotifyAt     string        `yaml:"notify_at"`
	CloseAt      string        `yaml:"close_at"`
	Timezone     string        `yaml:"timezone"`
	TickInterval time.Duration `yaml:"tick_interval"`
	TieBreak     string        `yaml:"tie_break"`
}

// LedgerConfig holds the ledger settings. CentralSupply is the total number
// of whole units the central account may ever issue.
type LedgerConfig struct {
	CentralSupply int64 `yaml:"central_supply"`
}

// HTTPConfig holds the admin server configuration.
type HTTPConfig struct {
	Address   string  `yaml:"address"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file. A missing file falls
// back to environment variables alone; environment variables always win.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		c.NATS.NKeySeed = v
	}
	if v := os.Getenv("CHANNEL_ID"); v != "" {
		c.Channel.ID = v
	}
	if v := os.Getenv("SCRUM_NOTIFY_AT"); v != "" {
		c.Scrum.NotifyAt = v
	}
	if v := os.Getenv("SCRUM_CLOSE_AT"); v != "" {
		c.Scrum.CloseAt = v
	}
	if v := os.Getenv("SCRUM_TIMEZONE"); v != "" {
		c.Scrum.Timezone = v
	}
	if v := os.Getenv("SCRUM_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCRUM_TICK_INTERVAL value: %w", err)
		}
		c.Scrum.TickInterval = d
	}
	if v := os.Getenv("SCRUM_TIE_BREAK"); v != "" {
		c.Scrum.TieBreak = v
	}
	if v := os.Getenv("LEDGER_CENTRAL_SUPPLY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_CENTRAL_SUPPLY value: %w", err)
		}
		c.Ledger.CentralSupply = n
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		c.HTTP.Address = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Observability.Environment = v
	}
	if os.Getenv("DEV") != "" {
		c.Observability.Environment = "development"
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = "scrumbot"
	}
	if c.NATS.RequestTimeout == 0 {
		c.NATS.RequestTimeout = 10 * time.Second
	}
	if c.Channel.Markers.Positive == "" {
		c.Channel.Markers.Positive = channel.DefaultMarkerSet.Positive
	}
	if c.Channel.Markers.Negative == "" {
		c.Channel.Markers.Negative = channel.DefaultMarkerSet.Negative
	}
	if c.Channel.RatePerSecond == 0 {
		c.Channel.RatePerSecond = 5
	}
	if c.Channel.Burst == 0 {
		c.Channel.Burst = 5
	}
	if c.Scrum.NotifyAt == "" {
		c.Scrum.NotifyAt = "3am"
	}
	if c.Scrum.CloseAt == "" {
		c.Scrum.CloseAt = "10pm"
	}
	if c.Scrum.Timezone == "" {
		c.Scrum.Timezone = "Local"
	}
	if c.Scrum.TickInterval == 0 {
		c.Scrum.TickInterval = time.Minute
	}
	if c.Ledger.CentralSupply == 0 {
		c.Ledger.CentralSupply = DefaultCentralSupply
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = 10
	}
	if c.HTTP.Burst == 0 {
		c.HTTP.Burst = 20
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "scrum-bot"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "production"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

// Validate rejects configurations the bot cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres dsn is not set (DATABASE_URL)"))
	}
	if c.NATS.URL == "" {
		errs = append(errs, errors.New("nats url is not set (NATS_URL)"))
	}
	if _, err := channel.ParseSnowflake("channel_id", c.Channel.ID); err != nil {
		errs = append(errs, err)
	}
	if c.Channel.Markers.Positive == c.Channel.Markers.Negative {
		errs = append(errs, errors.New("positive and negative markers must differ"))
	}
	if _, err := c.Scrum.Window(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Scrum.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Scrum.Precedence(); err != nil {
		errs = append(errs, err)
	}
	if c.Scrum.TickInterval < time.Second {
		errs = append(errs, fmt.Errorf("scrum tick interval %s is too short", c.Scrum.TickInterval))
	}
	if c.Ledger.CentralSupply < 0 {
		errs = append(errs, fmt.Errorf("ledger central supply %d is negative", c.Ledger.CentralSupply))
	} else if c.Ledger.CentralSupply > maxCentralSupply {
		errs = append(errs, fmt.Errorf("ledger central supply %d is too large", c.Ledger.CentralSupply))
	}
	return errors.Join(errs...)
}

// Window resolves the notify and close times into local hours.
func (c ScrumConfig) Window() (scrumdomain.Window, error) {
	notify, err := ParseHour(c.NotifyAt)
	if err != nil {
		return scrumdomain.Window{}, fmt.Errorf("invalid scrum notify_at: %w", err)
	}
	closeHour, err := ParseHour(c.CloseAt)
	if err != nil {
		return scrumdomain.Window{}, fmt.Errorf("invalid scrum close_at: %w", err)
	}
	w := scrumdomain.Window{NotifyHour: notify, CloseHour: closeHour}
	if err := w.Validate(); err != nil {
		return scrumdomain.Window{}, err
	}
	return w, nil
}

// Location loads the configured time zone.
func (c ScrumConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scrum timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Precedence maps tie_break onto the tally precedence.
func (c ScrumConfig) Precedence() (scrumdomain.Precedence, error) {
	p, ok := scrumdomain.ParsePrecedence(strings.ToLower(strings.TrimSpace(c.TieBreak)))
	if !ok {
		return p, fmt.Errorf("invalid scrum tie_break %q (want negative or positive)", c.TieBreak)
	}
	return p, nil
}

// DefaultCentralSupply is the issuance pool used when none is configured.
const DefaultCentralSupply = 1_000_000

// maxCentralSupply keeps the supply in minor units inside an int64.
const maxCentralSupply = math.MaxInt64 / 100

var hourParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseHour reads an hour of the day from a bare number or a phrase such as
// "3am" or "10:00 pm". Only whole hours are accepted.
func ParseHour(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty time")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 23 {
			return 0, fmt.Errorf("hour %d out of range", n)
		}
		return n, nil
	}

	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	r, err := hourParser.Parse(s, base)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q: %w", s, err)
	}
	if r == nil {
		return 0, fmt.Errorf("no time found in %q", s)
	}
	if r.Time.Minute() != 0 || r.Time.Second() != 0 {
		return 0, fmt.Errorf("%q is not a whole hour", s)
	}
	return r.Time.Hour(), nil
}
