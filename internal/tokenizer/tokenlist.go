package tokenizer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoTokenList is returned when a token file holds no tokens.
var ErrNoTokenList = errors.New("no token list found")

// tokenConfig covers the ESPnet training config layouts that carry a token
// list.
type tokenConfig struct {
	Token struct {
		List []string `yaml:"list"`
	} `yaml:"token"`
	TokenList []string `yaml:"token_list"`
}

// LoadTokenList reads an ordered token list. Files ending in .yaml, .yml or
// .json are parsed as a config with token.list or token_list, or as a bare
// sequence. Any other file is read as one token per line.
func LoadTokenList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token list: %w", err)
	}

	var tokens []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		tokens, err = parseTokenConfig(data)
	default:
		tokens, err = parseTokenLines(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse token list %q: %w", path, err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%q: %w", path, ErrNoTokenList)
	}

	return tokens, nil
}

func parseTokenConfig(data []byte) ([]string, error) {
	var seq []string
	if err := yaml.Unmarshal(data, &seq); err == nil && len(seq) > 0 {
		return seq, nil
	}

	var cfg tokenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Token.List) > 0 {
		return cfg.Token.List, nil
	}

	return cfg.TokenList, nil
}

// parseTokenLines keeps each line verbatim except for line terminators, so
// a line holding a single space is the separator token.
func parseTokenLines(data []byte) ([]string, error) {
	var tokens []string

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		tokens = append(tokens, line)
	}

	return tokens, sc.Err()
}
