// Package toolchain wraps the external cargo invocations: macro expansion
// and the lint warning count.
package toolchain

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	proberr "crateprobe/internal/errors"
	"crateprobe/internal/logging"
)

// warningRe matches cargo's per-crate lint summary line, e.g.
// `warning: `serde` (lib) generated 3 warnings`.
var warningRe = regexp.MustCompile("(?m)^warning: `[A-Za-z0-9_-]+` \\(\\w+\\) generated ([0-9]+) warning")

// Cargo runs the cargo binary against a package directory.
type Cargo struct {
	path        string
	allFeatures bool
	logger      *logging.Logger
}

// NewCargo creates a cargo wrapper using the given binary path.
func NewCargo(path string, allFeatures bool, logger *logging.Logger) *Cargo {
	return &Cargo{
		path:        path,
		allFeatures: allFeatures,
		logger:      logger.With(map[string]interface{}{"component": "cargo"}),
	}
}

// Expand runs `cargo expand` in dir and returns the macro-expanded source.
func (c *Cargo) Expand(ctx context.Context, dir string) ([]byte, error) {
	args := []string{"expand"}
	if c.allFeatures {
		args = append(args, "--all-features")
	}

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running cargo expand", map[string]interface{}{
		"dir": dir,
	})
	if err := cmd.Run(); err != nil {
		return nil, proberr.Newf(proberr.ExpandFailed, err,
			"cargo expand in %s: %s", dir, lastLine(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, proberr.Newf(proberr.ExpandFailed, nil,
			"cargo expand in %s produced no output", dir)
	}
	return stdout.Bytes(), nil
}

// ClippyWarnings runs `cargo clippy` in dir and returns the total warning
// count reported for the package. Clippy exiting nonzero is not itself a
// failure as long as the summary line is present.
func (c *Cargo) ClippyWarnings(ctx context.Context, dir string) (int, error) {
	args := []string{"clippy"}
	if c.allFeatures {
		args = append(args, "--all-features")
	}

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("running cargo clippy", map[string]interface{}{
		"dir": dir,
	})
	runErr := cmd.Run()

	count, found := CountWarnings(stderr.String())
	if found {
		return count, nil
	}
	if runErr != nil {
		return 0, proberr.Newf(proberr.LintFailed, runErr,
			"cargo clippy in %s: %s", dir, lastLine(stderr.String()))
	}
	// A clean run prints no summary line.
	return 0, nil
}

// CountWarnings sums the warning counts from cargo's per-target summary
// lines in the given stderr text.
func CountWarnings(stderr string) (int, bool) {
	matches := warningRe.FindAllStringSubmatch(stderr, -1)
	if matches == nil {
		return 0, false
	}
	total := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		total += n
	}
	return total, true
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
