// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"archbundle-cli/pkg/bundle"
)

// ShellInvoker runs the toolchain through the embedded POSIX shell
// interpreter (mvdan.cc/sh). This suits toolchain wrappers written as
// shell pipelines and works identically on hosts without /bin/sh. The
// script sees the target both via expanded placeholders and via the
// ARCHBUNDLE_* environment variables.
type ShellInvoker struct {
	// Script is the shell script template. Required.
	Script string
	// SourceRoot is the working directory for the script. Defaults to the
	// current directory.
	SourceRoot string
	// Logger receives per-invocation progress. Optional.
	Logger *log.Logger
}

// Build parses and runs the script for one target.
func (i *ShellInvoker) Build(ctx context.Context, target bundle.BuildTarget, out string) error {
	if strings.TrimSpace(i.Script) == "" {
		return fmt.Errorf("toolchain script is not configured")
	}

	script := expandTemplate(i.Script, target, out, i.SourceRoot)
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "toolchain")
	if err != nil {
		return fmt.Errorf("toolchain script syntax error: %w", err)
	}

	if i.Logger != nil {
		i.Logger.Debug("running toolchain script", "target", target.Identifier())
	}

	var output bytes.Buffer
	env := append(os.Environ(), targetEnv(target, out, i.SourceRoot)...)
	runner, err := interp.New(
		interp.Dir(i.SourceRoot),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &output, &output),
	)
	if err != nil {
		return fmt.Errorf("create shell interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("toolchain script canceled: %w", ctxErr)
		}
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return fmt.Errorf("toolchain script exited with status %d%s", int(exitStatus), outputTail(output.Bytes()))
		}
		return fmt.Errorf("toolchain script failed: %w%s", err, outputTail(output.Bytes()))
	}
	return nil
}
