package ranger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/xy-planning-network/signpost"
)

// keyDelimiter replaces viper's "." so host patterns like "shop.example.com" stay single keys.
const keyDelimiter = "::"

// A FileConfig holds the maps a signpost app reads from its config file.
//
// Keys are read case-insensitively and come back lower-cased.
type FileConfig struct {
	// Cors lists the origins allowed to read responses cross-origin.
	Cors []string `mapstructure:"cors"`

	// DefaultRoot is the sub-root for hosts no pattern in Domains matches.
	DefaultRoot string `mapstructure:"defaultroot"`

	// Defaults is the global page configuration.
	Defaults map[string]any `mapstructure:"defaults"`

	// Domains maps host patterns to sub-roots.
	Domains map[string]string `mapstructure:"domains"`

	// Errors maps status codes to error pages.
	Errors map[string]string `mapstructure:"errors"`

	// ExtTypes maps extensions to content types.
	ExtTypes map[string]string `mapstructure:"exttypes"`

	// RenderedExts lists extensions whose output is injected like a page.
	RenderedExts []string `mapstructure:"renderedexts"`

	// Static maps URL mounts to the directories served under them.
	Static map[string]string `mapstructure:"static"`
}

// LoadConfig reads the config file at path; its format follows its extension (yaml, json, toml).
func LoadConfig(path string) (FileConfig, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)

	var cfg FileConfig
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("%w: could not read %s: %s", signpost.ErrBadConfig, path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: could not parse %s: %s", signpost.ErrBadConfig, path, err)
	}

	if _, err := cfg.ErrorPages(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ErrorPages keys Errors by status code.
func (c FileConfig) ErrorPages() (map[int]string, error) {
	pages := make(map[int]string, len(c.Errors))
	for k, v := range c.Errors {
		code, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || code < 100 || code > 599 {
			return nil, fmt.Errorf("%w: errors: %q is not a status code", signpost.ErrBadConfig, k)
		}

		pages[code] = v
	}

	return pages, nil
}

// StaticMounts resolves the directories of Static against base.
// Mounts are slash-trimmed; empty mounts or directories are dropped.
// Without any Static entries, "/static" serves base/static.
func (c FileConfig) StaticMounts(base string) map[string]string {
	mounts := make(map[string]string)
	for mount, dir := range c.Static {
		mount = strings.Trim(mount, "/\\ ")
		if mount == "" || dir == "" {
			continue
		}

		if !isAbs(dir) {
			dir = joinDir(base, dir)
		}

		mounts["/"+mount] = dir
	}

	if len(mounts) == 0 {
		mounts["/static"] = joinDir(base, "static")
	}

	return mounts
}

// isAbs reports whether dir is rooted, including Windows volume names.
func isAbs(dir string) bool {
	return strings.HasPrefix(dir, "/") || strings.HasPrefix(dir, "\\") || strings.Contains(dir, ":")
}

func joinDir(base, dir string) string {
	if base == "" {
		return dir
	}

	return strings.TrimRight(base, "/") + "/" + dir
}
