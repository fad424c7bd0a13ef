package wrapper

import (
	"runtime"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/scriptpack/errors"
)

// Launcher modes accepted by ResolveLauncher.
const (
	LauncherAuto   = "auto"
	LauncherShell  = "shell"
	LauncherDirect = "direct"
)

// Launcher is the execution strategy the wrapper uses to start the
// materialized script. The temp file path is appended to Command, followed
// by the wrapper's own arguments. An empty Command executes the file itself.
type Launcher struct {
	Name       string   `json:"name"`
	Command    []string `json:"command,omitempty"`
	HideWindow bool     `json:"hide_window,omitempty"`
}

// ResolveLauncher picks the execution strategy for a script.
//
// interpreter, when set, wins over mode and is split like a shell would
// ("python3 -u"). In auto mode Windows scripts go through cmd.exe, scripts
// with a shebang are executed directly and everything else goes through
// /bin/sh.
func ResolveLauncher(mode, interpreter, goos string, shebang bool) (Launcher, error) {
	if goos == "" {
		goos = runtime.GOOS
	}
	hide := goos == "windows"

	if interpreter != "" {
		argv, err := shellquote.Split(interpreter)
		if err != nil {
			return Launcher{}, errors.Wrapf(errors.ErrInvalidConfig, "wrapper.interpreter %q: %v", interpreter, err)
		}
		if len(argv) == 0 {
			return Launcher{}, errors.Wrapf(errors.ErrInvalidConfig, "wrapper.interpreter %q is blank", interpreter)
		}
		return Launcher{Name: "interpreter", Command: argv, HideWindow: hide}, nil
	}

	switch mode {
	case "", LauncherAuto:
		if goos != "windows" && shebang {
			return directLauncher(hide), nil
		}
		return shellLauncher(goos, hide), nil
	case LauncherShell:
		return shellLauncher(goos, hide), nil
	case LauncherDirect:
		return directLauncher(hide), nil
	default:
		return Launcher{}, errors.Wrapf(errors.ErrInvalidConfig,
			"wrapper.launcher %q (want %s, %s or %s)", mode, LauncherAuto, LauncherShell, LauncherDirect)
	}
}

func shellLauncher(goos string, hide bool) Launcher {
	if goos == "windows" {
		return Launcher{Name: LauncherShell, Command: []string{"cmd.exe", "/C"}, HideWindow: hide}
	}
	return Launcher{Name: LauncherShell, Command: []string{"/bin/sh"}, HideWindow: hide}
}

func directLauncher(hide bool) Launcher {
	return Launcher{Name: LauncherDirect, HideWindow: hide}
}
