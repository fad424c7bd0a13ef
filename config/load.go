package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/teranos/scriptpack/errors"
)

const (
	// ProjectConfigName is looked up from the working directory upwards.
	ProjectConfigName = "scriptpack.toml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SCRIPTPACK"
)

// Source says where a setting came from.
type Source string

const (
	SourceDefault     Source = "default"
	SourceUser        Source = "user"        // ~/.scriptpack/config.toml
	SourceProject     Source = "project"     // scriptpack.toml
	SourceExplicit    Source = "explicit"    // --config
	SourceEnvironment Source = "environment" // SCRIPTPACK_* env vars
)

// File is one config file that was merged.
type File struct {
	Path   string `json:"path"`
	Source Source `json:"source"`
	// Unknown lists keys in the file that no setting reads.
	Unknown []string `json:"unknown,omitempty"`
}

// Setting is one effective value and its origin.
type Setting struct {
	Key        string      `json:"key"`
	Value      interface{} `json:"value"`
	Source     Source      `json:"source"`
	SourcePath string      `json:"source_path,omitempty"` // file path or env var name
}

// Loaded is a validated configuration plus how it was assembled.
type Loaded struct {
	Config   *Config   `json:"config"`
	Files    []File    `json:"files"`
	Settings []Setting `json:"settings"`
}

// Load reads the configuration for the current user and working directory.
// explicit, when set, must exist.
func Load(explicit string) (*Loaded, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	home, _ := os.UserHomeDir()
	return load(wd, home, explicit)
}

// UserConfigPath returns ~/.scriptpack/config.toml, or "" without a home.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return userConfigPath(home)
}

func userConfigPath(home string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".scriptpack", "config.toml")
}

// FindProjectConfig searches for scriptpack.toml by walking up the
// directory tree from dir. Returns "" when none is found.
func FindProjectConfig(dir string) string {
	for {
		path := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func load(wd, home, explicit string) (*Loaded, error) {
	v := newViper()
	loaded := &Loaded{}
	origin := map[string]File{}

	candidates := []File{
		{Path: userConfigPath(home), Source: SourceUser},
		{Path: FindProjectConfig(wd), Source: SourceProject},
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrInvalidConfig, "config file %s: %v", explicit, err),
				"create one with: scriptpack config init "+explicit,
			)
		}
		candidates = append(candidates, File{Path: explicit, Source: SourceExplicit})
	}

	for _, f := range candidates {
		if f.Path == "" {
			continue
		}
		if _, err := os.Stat(f.Path); err != nil {
			continue
		}
		keys, unknown, err := inspectFile(f.Path)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(f.Path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "failed to read config file %s: %v", f.Path, err)
		}
		f.Unknown = unknown
		loaded.Files = append(loaded.Files, f)
		for _, k := range keys {
			origin[k] = f
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "failed to unmarshal config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	loaded.Config = &c
	loaded.Settings = settings(v, origin)
	return loaded, nil
}

// inspectFile decodes path into Config with BurntSushi/toml to learn which
// keys it sets and which ones nothing reads.
func inspectFile(path string) (keys, unknown []string, err error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrInvalidConfig, "failed to parse config file %s: %v", path, err)
	}
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	for _, k := range md.Keys() {
		if len(k) == 2 && md.IsDefined(k...) && !contains(unknown, k.String()) {
			keys = append(keys, strings.ToLower(k.String()))
		}
	}
	return keys, unknown, nil
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// settings lists every known key with its effective value and source.
func settings(v *viper.Viper, origin map[string]File) []Setting {
	// Only keys with a default are settings; unknown file keys are
	// reported per file instead.
	defaults := viper.New()
	SetDefaults(defaults)
	keys := defaults.AllKeys()
	sort.Strings(keys)

	out := make([]Setting, 0, len(keys))
	for _, key := range keys {
		s := Setting{Key: key, Value: v.Get(key), Source: SourceDefault}
		if f, ok := origin[key]; ok {
			s.Source = f.Source
			s.SourcePath = f.Path
		}
		env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(env); ok {
			s.Source = SourceEnvironment
			s.SourcePath = env
		}
		out = append(out, s)
	}
	return out
}
