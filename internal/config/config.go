// Package config loads okng settings from TOML files through kong's
// configuration resolver, so every flag can also be set in a config file.
//
// Keys are flag names; underscores and dashes are interchangeable. A table named
// after a command applies only to that command:
//
//	sample-rate = 48000
//	metric = "kurtosis"
//
//	[label]
//	threshold = 35
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
)

// FileName is the config file looked up in the working directory.
const FileName = "okng.toml"

// SearchPaths returns the config files consulted, in order, when --config is
// not given. kong expands "~" and skips files that do not exist.
func SearchPaths() []string {
	return []string{
		FileName,
		filepath.Join("~", ".config", "okng", "config.toml"),
	}
}

// Loader parses TOML into a kong resolver. It satisfies kong.ConfigurationLoader.
func Loader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	values = normalise(values)

	return kong.ResolverFunc(func(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if parent != nil && parent.Command != nil {
			if table, ok := values[parent.Command.Name].(map[string]any); ok {
				if v, ok := table[flag.Name]; ok {
					return flagValue(v), nil
				}
			}
		}
		v, ok := values[flag.Name]
		if !ok {
			return nil, nil
		}
		if _, isTable := v.(map[string]any); isTable {
			return nil, nil
		}
		return flagValue(v), nil
	}), nil
}

// LoadFile parses a single config file. Used by tests and by callers that want
// to inspect a file without building a parser.
func LoadFile(path string) (kong.Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return Loader(f)
}

// normalise rewrites keys to kong's dashed flag names, recursing into tables.
func normalise(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if table, ok := v.(map[string]any); ok {
			v = normalise(table)
		}
		out[strings.ReplaceAll(k, "_", "-")] = v
	}
	return out
}

// flagValue renders a TOML value in the string form kong's mappers parse.
func flagValue(v any) any {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
