package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// TTSTOK_SERVER_LISTEN_ADDR.
const EnvPrefix = "TTSTOK"

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Server    ServerConfig    `mapstructure:"server"`
	LogLevel  string          `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

type PathsConfig struct {
	TokensPath     string `mapstructure:"tokens_path"`
	LexiconPath    string `mapstructure:"lexicon_path"`
	TokenizerModel string `mapstructure:"tokenizer_model"`
}

type TokenizerConfig struct {
	Backend  string `mapstructure:"backend"`
	NoSpace  bool   `mapstructure:"nospace"`
	Language string `mapstructure:"language"`
}

// ServerConfig holds HTTP settings. Timeouts are in seconds.
type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"      validate:"required"`
	Workers         int    `mapstructure:"workers"          validate:"min=1"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"   validate:"min=1"`
	RequestTimeout  int    `mapstructure:"request_timeout"  validate:"min=1"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"min=0"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			TokensPath:     "models/tokens.txt",
			LexiconPath:    "models/cmudict.dict",
			TokenizerModel: "models/tokenizer.model",
		},
		Tokenizer: TokenizerConfig{
			Backend:  BackendLexicon,
			NoSpace:  true,
			Language: "English",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxTextBytes:    4096,
			RequestTimeout:  60,
			ShutdownTimeout: 30,
		},
		LogLevel: "info",
	}
}

// flagKeys maps config keys to the flag names RegisterFlags defines.
var flagKeys = []struct{ key, flag string }{
	{"paths.tokens_path", "paths-tokens-path"},
	{"paths.lexicon_path", "paths-lexicon-path"},
	{"paths.tokenizer_model", "paths-tokenizer-model"},
	{"tokenizer.backend", "backend"},
	{"tokenizer.nospace", "nospace"},
	{"tokenizer.language", "language"},
	{"server.listen_addr", "server-listen-addr"},
	{"server.workers", "workers"},
	{"server.max_text_bytes", "max-text-bytes"},
	{"server.request_timeout", "request-timeout"},
	{"server.shutdown_timeout", "shutdown-timeout"},
	{"log_level", "log-level"},
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-tokens-path", defaults.Paths.TokensPath, "Path to the token list (.txt, .yaml or .json)")
	fs.String("paths-lexicon-path", defaults.Paths.LexiconPath, "Path to the CMUdict-format lexicon")
	fs.String("paths-tokenizer-model", defaults.Paths.TokenizerModel, "Path to the SentencePiece model")
	fs.String("backend", defaults.Tokenizer.Backend, "Tokenizer backend: lexicon|goruut|sentencepiece")
	fs.Bool("nospace", defaults.Tokenizer.NoSpace, "Drop word separator symbols before id lookup")
	fs.String("language", defaults.Tokenizer.Language, "Language for the goruut backend")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent tokenization requests")
	fs.Int("max-text-bytes", defaults.Server.MaxTextBytes, "Max request text size in bytes")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
}

// Load resolves configuration with precedence flag > env > file > default.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("paths.tokenizer_model", EnvPrefix+"_PATHS_TOKENIZER_MODEL", EnvPrefix+"_TOKENIZER_MODEL"); err != nil {
		return Config{}, fmt.Errorf("bind tokenizer model env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("ttstokenizer")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges and the backend name.
func (c Config) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := NormalizeBackend(c.Tokenizer.Backend); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.tokens_path", c.Paths.TokensPath)
	v.SetDefault("paths.lexicon_path", c.Paths.LexiconPath)
	v.SetDefault("paths.tokenizer_model", c.Paths.TokenizerModel)
	v.SetDefault("tokenizer.backend", c.Tokenizer.Backend)
	v.SetDefault("tokenizer.nospace", c.Tokenizer.NoSpace)
	v.SetDefault("tokenizer.language", c.Tokenizer.Language)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

// bindFlags attaches each known flag to its nested key so that changed
// flags win over env and file values while config files keep working.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", fk.flag, err)
		}
	}

	return nil
}
