package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/scriptpack/pack"
	"github.com/teranos/scriptpack/toolchain"
	"github.com/teranos/scriptpack/wrapper"
)

// SetDefaults configures default values for all configuration options.
// Every key is registered here; env overrides only apply to known keys.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("build.go_binary", toolchain.DefaultGoBinary)
	v.SetDefault("build.min_go_version", toolchain.DefaultMinGoVersion)
	v.SetDefault("build.ldflags", toolchain.DefaultLDFlags) // strip symbol table and DWARF
	v.SetDefault("build.trimpath", true)
	v.SetDefault("build.flags", "")
	v.SetDefault("build.keep_workdir", false)

	v.SetDefault("wrapper.temp_dir", "")
	v.SetDefault("wrapper.temp_prefix", wrapper.DefaultTempPrefix)
	v.SetDefault("wrapper.fixed_name", "")
	v.SetDefault("wrapper.launcher", wrapper.LauncherAuto)
	v.SetDefault("wrapper.interpreter", "")

	v.SetDefault("watch.debounce_ms", int(pack.DefaultDebounce.Milliseconds()))
	v.SetDefault("watch.max_builds_per_minute", pack.DefaultMaxBuildsPerMinute)
}

// Default returns the configuration with every default applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return &c
}
