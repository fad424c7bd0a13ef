// Package config loads scriptpack settings with viper.
//
// Precedence, lowest to highest:
//
//	defaults
//	~/.scriptpack/config.toml   (user)
//	scriptpack.toml             (project, found by walking up from the working directory)
//	--config <file>             (explicit)
//	SCRIPTPACK_* env vars       (e.g. SCRIPTPACK_BUILD_GO_BINARY)
package config

import (
	"time"

	"github.com/teranos/scriptpack/pack"
	"github.com/teranos/scriptpack/toolchain"
)

// Config represents the scriptpack configuration
type Config struct {
	Build   BuildConfig   `mapstructure:"build" toml:"build" yaml:"build"`
	Wrapper WrapperConfig `mapstructure:"wrapper" toml:"wrapper" yaml:"wrapper"`
	Watch   WatchConfig   `mapstructure:"watch" toml:"watch" yaml:"watch"`
}

// BuildConfig configures the go toolchain invocation
type BuildConfig struct {
	GoBinary     string `mapstructure:"go_binary" toml:"go_binary" yaml:"go_binary"`
	MinGoVersion string `mapstructure:"min_go_version" toml:"min_go_version" yaml:"min_go_version"` // semver constraint
	LDFlags      string `mapstructure:"ldflags" toml:"ldflags" yaml:"ldflags"`
	Trimpath     bool   `mapstructure:"trimpath" toml:"trimpath" yaml:"trimpath"`
	Flags        string `mapstructure:"flags" toml:"flags" yaml:"flags"` // extra go build flags, shell-quoted
	KeepWorkdir  bool   `mapstructure:"keep_workdir" toml:"keep_workdir" yaml:"keep_workdir"`
}

// WrapperConfig configures the generated program
type WrapperConfig struct {
	// TempDir empty means the OS temp dir at run time.
	TempDir    string `mapstructure:"temp_dir" toml:"temp_dir" yaml:"temp_dir"`
	TempPrefix string `mapstructure:"temp_prefix" toml:"temp_prefix" yaml:"temp_prefix"`
	// FixedName is the legacy fixed temp name; empty uses unique names.
	FixedName string `mapstructure:"fixed_name" toml:"fixed_name" yaml:"fixed_name"`
	// Launcher is auto, shell or direct.
	Launcher string `mapstructure:"launcher" toml:"launcher" yaml:"launcher"`
	// Interpreter, e.g. "python3 -u", overrides Launcher.
	Interpreter string `mapstructure:"interpreter" toml:"interpreter" yaml:"interpreter"`
}

// WatchConfig configures --watch
type WatchConfig struct {
	DebounceMS         int `mapstructure:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms"`
	MaxBuildsPerMinute int `mapstructure:"max_builds_per_minute" toml:"max_builds_per_minute" yaml:"max_builds_per_minute"` // 0 = unlimited
}

// Toolchain returns the compiler settings.
func (c *Config) Toolchain() toolchain.Config {
	return toolchain.Config{
		GoBinary:     c.Build.GoBinary,
		MinGoVersion: c.Build.MinGoVersion,
		LDFlags:      c.Build.LDFlags,
		Trimpath:     c.Build.Trimpath,
		Flags:        c.Build.Flags,
		KeepWorkdir:  c.Build.KeepWorkdir,
	}
}

// PackOptions returns the wrapper settings.
func (c *Config) PackOptions() pack.Options {
	return pack.Options{
		TempDir:     c.Wrapper.TempDir,
		TempPrefix:  c.Wrapper.TempPrefix,
		FixedName:   c.Wrapper.FixedName,
		Launcher:    c.Wrapper.Launcher,
		Interpreter: c.Wrapper.Interpreter,
	}
}

// WatchOptions returns the --watch settings.
func (c *Config) WatchOptions() pack.WatchConfig {
	return pack.WatchConfig{
		Debounce:           time.Duration(c.Watch.DebounceMS) * time.Millisecond,
		MaxBuildsPerMinute: c.Watch.MaxBuildsPerMinute,
	}
}
