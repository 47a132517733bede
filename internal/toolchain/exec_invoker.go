// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"archbundle-cli/pkg/bundle"
	"archbundle-cli/pkg/platform"
)

// ExecInvoker runs the toolchain as a child process. The command is an
// argv template; each element has target placeholders expanded before the
// process is started. Example:
//
//	["cargo", "build", "--release", "--target", "{arch}-apple-{platform}"]
type ExecInvoker struct {
	// Command is the argv template. Required, at least one element.
	Command []string
	// SourceRoot is the working directory for the invocation. Defaults to
	// the current directory.
	SourceRoot string
	// Logger receives per-invocation progress. Optional.
	Logger *log.Logger
}

// Build runs the toolchain for one target. Output (stdout and stderr
// combined) is captured and attached to the error on failure; the
// toolchain's output is noise on success.
func (i *ExecInvoker) Build(ctx context.Context, target bundle.BuildTarget, out string) error {
	if len(i.Command) == 0 {
		return fmt.Errorf("toolchain command is not configured")
	}

	argv := make([]string, len(i.Command))
	for n, s := range i.Command {
		argv[n] = expandTemplate(s, target, out, i.SourceRoot)
	}
	argv = hostArgv(argv)

	if i.Logger != nil {
		i.Logger.Debug("invoking toolchain", "target", target.Identifier(), "command", strings.Join(argv, " "))
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = i.SourceRoot
	cmd.Env = append(os.Environ(), targetEnv(target, out, i.SourceRoot)...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("toolchain invocation canceled: %w", ctxErr)
		}
		return fmt.Errorf("toolchain exited with error: %w%s", err, outputTail(output.Bytes()))
	}
	return nil
}

// hostArgv prepends the sandbox spawn prefix when the process runs inside a
// Flatpak or Snap. Native toolchains live on the host, not in the sandbox.
func hostArgv(argv []string) []string {
	spawn := platform.GetSpawnCommand()
	if spawn == "" {
		return argv
	}
	prefixed := append([]string{spawn}, platform.GetSpawnArgs()...)
	return append(prefixed, argv...)
}

// outputTail formats the last few lines of toolchain output for inclusion
// in an error message.
func outputTail(output []byte) string {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	const keep = 10
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return "\ntoolchain output:\n  " + strings.Join(lines, "\n  ")
}
