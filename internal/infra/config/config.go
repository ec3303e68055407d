package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Near     NearConfig     `mapstructure:"near"`
	App      AppConfig      `mapstructure:"app"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// NearConfig - NEAR RPC and NearBlocks API settings.
type NearConfig struct {
	RPCURL         string `mapstructure:"rpc_url"`
	NearblocksURL  string `mapstructure:"nearblocks_url"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

type AppConfig struct {
	DataDir      string `mapstructure:"data_dir"`
	PollInterval int    `mapstructure:"poll_interval"`
	AccountsFile string `mapstructure:"accounts_file"`
	UsersFile    string `mapstructure:"users_file"`
}

// AccountsPath returns the watchlist snapshot path under the data directory.
func (c *Config) AccountsPath() string {
	return filepath.Join(c.App.DataDir, c.App.AccountsFile)
}

// UsersPath returns the subscriber snapshot path under the data directory.
func (c *Config) UsersPath() string {
	return filepath.Join(c.App.DataDir, c.App.UsersFile)
}

// RegisterFlags attaches configuration flags to a command's flag set.
// Pass the same set to LoadConfig so flag values override file and env.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("data-dir", "data", "Directory for persisted state (env: DATA_DIR)")
	fs.Int("poll-interval", 60, "Watchlist poll interval in seconds (env: POLL_INTERVAL)")
	fs.String("rpc-url", "", "NEAR RPC endpoint URL (env: NEAR_RPC_URL)")
	fs.Int("request-timeout", 30, "HTTP request timeout in seconds (env: NEAR_REQUEST_TIMEOUT)")
}

// LoadConfig resolves configuration from defaults, config.yaml, .env,
// environment variables and finally the given flag set (highest priority).
// fs may be nil when the caller has no flags to bind.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	// .env is optional, ignore a missing file.
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // missing config.yaml is not an error

	v.AutomaticEnv()
	setupEnvAliases(v)

	if fs != nil {
		bindFlags(v, fs)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")

	v.BindEnv("near.rpc_url", "NEAR_RPC_URL")
	v.BindEnv("near.nearblocks_url", "NEARBLOCKS_URL")
	v.BindEnv("near.request_timeout", "NEAR_REQUEST_TIMEOUT")
	v.BindEnv("near.max_retries", "NEAR_MAX_RETRIES")

	v.BindEnv("app.data_dir", "DATA_DIR")
	v.BindEnv("app.poll_interval", "POLL_INTERVAL")
	v.BindEnv("app.accounts_file", "ACCOUNTS_FILE")
	v.BindEnv("app.users_file", "USERS_FILE")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.bot_token", "")

	v.SetDefault("near.rpc_url", "https://rpc.mainnet.near.org")
	v.SetDefault("near.nearblocks_url", "https://api.nearblocks.io/v1")
	v.SetDefault("near.request_timeout", 30)
	v.SetDefault("near.max_retries", 3)

	v.SetDefault("app.data_dir", "data")
	v.SetDefault("app.poll_interval", 60)
	v.SetDefault("app.accounts_file", "monitored_accounts.json")
	v.SetDefault("app.users_file", "users.json")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	bind := func(key, flag string) {
		if f := fs.Lookup(flag); f != nil && f.Changed {
			v.BindPFlag(key, f)
		}
	}
	bind("app.data_dir", "data-dir")
	bind("app.poll_interval", "poll-interval")
	bind("near.rpc_url", "rpc-url")
	bind("near.request_timeout", "request-timeout")
}

func validateConfig(cfg *Config) error {
	if cfg.Near.RPCURL == "" {
		return fmt.Errorf("near.rpc_url is required")
	}
	if cfg.App.PollInterval <= 0 {
		return fmt.Errorf("app.poll_interval must be positive, got %d", cfg.App.PollInterval)
	}
	return nil
}
