package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config, args ...string) (*fakeBinder, error) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}, fs.Parse(args)
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.TokensPath != "models/tokens.txt" {
		t.Errorf("TokensPath = %q; want %q", cfg.Paths.TokensPath, "models/tokens.txt")
	}

	if cfg.Paths.LexiconPath != "models/cmudict.dict" {
		t.Errorf("LexiconPath = %q; want %q", cfg.Paths.LexiconPath, "models/cmudict.dict")
	}

	if cfg.Paths.TokenizerModel != "models/tokenizer.model" {
		t.Errorf("TokenizerModel = %q; want %q", cfg.Paths.TokenizerModel, "models/tokenizer.model")
	}

	if cfg.Tokenizer.Backend != BackendLexicon {
		t.Errorf("Tokenizer.Backend = %q; want %q", cfg.Tokenizer.Backend, BackendLexicon)
	}

	if !cfg.Tokenizer.NoSpace {
		t.Error("Tokenizer.NoSpace = false; want true")
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":8080")
	}

	if cfg.Server.Workers != 2 {
		t.Errorf("Server.Workers = %d; want 2", cfg.Server.Workers)
	}

	if cfg.Server.MaxTextBytes != 4096 {
		t.Errorf("Server.MaxTextBytes = %d; want 4096", cfg.Server.MaxTextBytes)
	}

	if cfg.Server.RequestTimeout != 60 {
		t.Errorf("Server.RequestTimeout = %d; want 60", cfg.Server.RequestTimeout)
	}

	if cfg.Server.ShutdownTimeout != 30 {
		t.Errorf("Server.ShutdownTimeout = %d; want 30", cfg.Server.ShutdownTimeout)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

// --- NormalizeBackend ---

func TestNormalizeBackend(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lexicon canonical", "lexicon", "lexicon", false},
		{"goruut canonical", "goruut", "goruut", false},
		{"sentencepiece canonical", "sentencepiece", "sentencepiece", false},
		{"cmudict alias", "cmudict", "lexicon", false},
		{"ipa alias", "IPA", "goruut", false},
		{"spm alias", "spm", "sentencepiece", false},
		{"mixed case with spaces", "  Lexicon  ", "lexicon", false},
		{"empty defaults to lexicon", "", "lexicon", false},
		{"whitespace defaults to lexicon", "   ", "lexicon", false},
		{"invalid value", "onnx", "", true},
		{"invalid with spaces", "  bad  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBackend(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeBackend(%q) = %q, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Errorf("NormalizeBackend(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("NormalizeBackend(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"uppercase log level", func(c *Config) { c.LogLevel = "DEBUG" }, false},
		{"empty log level", func(c *Config) { c.LogLevel = "" }, false},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"zero workers", func(c *Config) { c.Server.Workers = 0 }, true},
		{"zero max text bytes", func(c *Config) { c.Server.MaxTextBytes = 0 }, true},
		{"zero request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, true},
		{"negative shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = -1 }, true},
		{"empty listen addr", func(c *Config) { c.Server.ListenAddr = "" }, true},
		{"bad backend", func(c *Config) { c.Tokenizer.Backend = "onnx" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	// Spot-check a few flags are registered with correct defaults.
	checks := []struct {
		flag string
		want string
	}{
		{"paths-tokens-path", "models/tokens.txt"},
		{"paths-lexicon-path", "models/cmudict.dict"},
		{"paths-tokenizer-model", "models/tokenizer.model"},
		{"server-listen-addr", ":8080"},
		{"backend", "lexicon"},
		{"nospace", "true"},
		{"workers", "2"},
		{"log-level", "info"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

func TestRegisterFlags_EveryKeyHasFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, DefaultConfig())

	for _, fk := range flagKeys {
		if fs.Lookup(fk.flag) == nil {
			t.Errorf("key %q maps to unregistered flag %q", fk.key, fk.flag)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()

	binder, err := newFlagBinder(defaults)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != defaults {
		t.Errorf("Load() = %+v; want %+v", cfg, defaults)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()

	binder, err := newFlagBinder(defaults,
		"--backend=goruut",
		"--workers=8",
		"--nospace=false",
		"--log-level=debug",
		"--paths-tokenizer-model=/custom/tokenizer.model",
	)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tokenizer.Backend != "goruut" {
		t.Errorf("Tokenizer.Backend = %q; want %q", cfg.Tokenizer.Backend, "goruut")
	}

	if cfg.Server.Workers != 8 {
		t.Errorf("Server.Workers = %d; want 8", cfg.Server.Workers)
	}

	if cfg.Tokenizer.NoSpace {
		t.Error("Tokenizer.NoSpace = true; want false")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}

	if cfg.Paths.TokenizerModel != "/custom/tokenizer.model" {
		t.Errorf("Paths.TokenizerModel = %q; want %q", cfg.Paths.TokenizerModel, "/custom/tokenizer.model")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TTSTOK_LOG_LEVEL", "warn")
	t.Setenv("TTSTOK_SERVER_LISTEN_ADDR", ":9999")
	t.Setenv("TTSTOK_PATHS_TOKENS_PATH", "/env/tokens.yaml")

	cfg, err := Load(LoadOptions{
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":9999")
	}

	if cfg.Paths.TokensPath != "/env/tokens.yaml" {
		t.Errorf("Paths.TokensPath = %q; want %q", cfg.Paths.TokensPath, "/env/tokens.yaml")
	}
}

func TestLoad_EnvOverride_TokenizerModelShortName(t *testing.T) {
	t.Setenv("TTSTOK_TOKENIZER_MODEL", "/env/tokenizer.model")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Paths.TokenizerModel != "/env/tokenizer.model" {
		t.Errorf("Paths.TokenizerModel = %q; want %q", cfg.Paths.TokenizerModel, "/env/tokenizer.model")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	cfgFile := filepath.Join(t.TempDir(), "ttstokenizer.yaml")
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return cfgFile
}

func TestLoad_ConfigFile(t *testing.T) {
	cfgFile := writeConfig(t, `
log_level: error
server:
  workers: 16
  listen_addr: ":7777"
tokenizer:
  backend: goruut
  nospace: false
paths:
  tokens_path: /data/tokens.yaml
`)

	defaults := DefaultConfig()

	binder, err := newFlagBinder(defaults)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:        binder,
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}

	if cfg.Server.Workers != 16 {
		t.Errorf("Server.Workers = %d; want 16", cfg.Server.Workers)
	}

	if cfg.Server.ListenAddr != ":7777" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":7777")
	}

	if cfg.Tokenizer.Backend != "goruut" {
		t.Errorf("Tokenizer.Backend = %q; want %q", cfg.Tokenizer.Backend, "goruut")
	}

	if cfg.Tokenizer.NoSpace {
		t.Error("Tokenizer.NoSpace = true; want false")
	}

	if cfg.Paths.TokensPath != "/data/tokens.yaml" {
		t.Errorf("Paths.TokensPath = %q; want %q", cfg.Paths.TokensPath, "/data/tokens.yaml")
	}

	// Unset keys keep their defaults.
	if cfg.Server.MaxTextBytes != defaults.Server.MaxTextBytes {
		t.Errorf("Server.MaxTextBytes = %d; want %d", cfg.Server.MaxTextBytes, defaults.Server.MaxTextBytes)
	}
}

func TestLoad_Precedence(t *testing.T) {
	cfgFile := writeConfig(t, "server:\n  workers: 16\n  max_text_bytes: 100\nlog_level: error\n")
	t.Setenv("TTSTOK_SERVER_WORKERS", "4")
	t.Setenv("TTSTOK_LOG_LEVEL", "warn")

	defaults := DefaultConfig()

	binder, err := newFlagBinder(defaults, "--log-level=debug")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, ConfigFile: cfgFile, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// flag > env > file > default
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want flag value %q", cfg.LogLevel, "debug")
	}

	if cfg.Server.Workers != 4 {
		t.Errorf("Server.Workers = %d; want env value 4", cfg.Server.Workers)
	}

	if cfg.Server.MaxTextBytes != 100 {
		t.Errorf("Server.MaxTextBytes = %d; want file value 100", cfg.Server.MaxTextBytes)
	}

	if cfg.Server.RequestTimeout != defaults.Server.RequestTimeout {
		t.Errorf("Server.RequestTimeout = %d; want default %d", cfg.Server.RequestTimeout, defaults.Server.RequestTimeout)
	}
}

func TestLoad_ConfigFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ttstokenizer.yaml"), []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Chdir(dir)

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "bad.yaml")
	// Write invalid YAML
	err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid config file")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/ttstokenizer.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}

func TestLoad_NilCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(LoadOptions{
		Cmd:      nil,
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != DefaultConfig() {
		t.Errorf("Load() = %+v; want defaults", cfg)
	}
}
