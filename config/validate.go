package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/kballard/go-shellquote"

	"github.com/teranos/scriptpack/errors"
	"github.com/teranos/scriptpack/wrapper"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Build.GoBinary) == "" {
		return invalid("build.go_binary cannot be empty")
	}
	if _, err := semver.NewConstraint(c.Build.MinGoVersion); err != nil {
		return invalid("build.min_go_version %q is not a version constraint: %v", c.Build.MinGoVersion, err)
	}
	if _, err := shellquote.Split(c.Build.Flags); err != nil {
		return invalid("build.flags %q: %v", c.Build.Flags, err)
	}

	switch c.Wrapper.Launcher {
	case wrapper.LauncherAuto, wrapper.LauncherShell, wrapper.LauncherDirect:
	default:
		return invalid("wrapper.launcher must be %s, %s or %s, got %q",
			wrapper.LauncherAuto, wrapper.LauncherShell, wrapper.LauncherDirect, c.Wrapper.Launcher)
	}
	if c.Wrapper.Interpreter != "" {
		argv, err := shellquote.Split(c.Wrapper.Interpreter)
		if err != nil {
			return invalid("wrapper.interpreter %q: %v", c.Wrapper.Interpreter, err)
		}
		if len(argv) == 0 {
			return invalid("wrapper.interpreter is blank")
		}
	}
	if c.Wrapper.TempPrefix == "" {
		return invalid("wrapper.temp_prefix cannot be empty")
	}
	if strings.ContainsAny(c.Wrapper.TempPrefix, `/\`) {
		return invalid("wrapper.temp_prefix %q must not contain path separators", c.Wrapper.TempPrefix)
	}
	if strings.ContainsAny(c.Wrapper.FixedName, `/\`) {
		return invalid("wrapper.fixed_name %q must not contain path separators", c.Wrapper.FixedName)
	}

	if c.Watch.DebounceMS < 0 {
		return invalid("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.MaxBuildsPerMinute < 0 {
		return invalid("watch.max_builds_per_minute must be >= 0, got %d", c.Watch.MaxBuildsPerMinute)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrInvalidConfig, format, args...)
}
