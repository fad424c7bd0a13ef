package toolchain

import (
	"context"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/scriptpack/errors"
)

// DefaultMinGoVersion is the oldest toolchain the generated wrapper is known
// to build with.
const DefaultMinGoVersion = ">= 1.21"

var goVersionPattern = regexp.MustCompile(`go(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseGoVersion extracts a semantic version from `go env GOVERSION` output.
// Release ("go1.24.6"), pre-release ("go1.25rc1") and development
// ("devel go1.26-abcdef ...") strings are accepted; a missing patch
// number is read as zero.
func ParseGoVersion(s string) (*semver.Version, error) {
	m := goVersionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, errors.Newf("unrecognized Go version %q", strings.TrimSpace(s))
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	return semver.NewVersion(m[1] + "." + m[2] + "." + patch)
}

// checkGoVersion runs `go env GOVERSION` and enforces the constraint.
func (g *GoToolchain) checkGoVersion(ctx context.Context, env []string) (string, error) {
	out, err := g.run(ctx, "", env, g.goBinary(), "env", "GOVERSION")
	if err != nil {
		return "", errors.WithHintf(
			errors.Wrapf(errors.ErrToolchainUnavailable, "%s env GOVERSION: %v", g.goBinary(), err),
			"install Go %s or point build.go_binary at a Go toolchain", g.minGoVersion(),
		)
	}
	raw := strings.TrimSpace(string(out))

	constraint, err := semver.NewConstraint(g.minGoVersion())
	if err != nil {
		return raw, errors.Wrapf(errors.ErrInvalidConfig, "build.min_go_version %q: %v", g.minGoVersion(), err)
	}

	v, err := ParseGoVersion(raw)
	if err != nil {
		return raw, errors.Wrap(errors.ErrToolchainUnavailable, err.Error())
	}
	if !constraint.Check(v) {
		return raw, errors.WithHintf(
			errors.Wrapf(errors.ErrToolchainUnavailable, "%s is %s, need %s", g.goBinary(), raw, g.minGoVersion()),
			"upgrade Go or relax build.min_go_version",
		)
	}
	return raw, nil
}
