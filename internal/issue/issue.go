// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	BuildFailedId Id = iota + 1
	DuplicateSliceId
	CopyIntegrityFailedId
	BundleValidationFailedId
	BundleNotFoundId
	ToolchainNotFoundId
	ConfigLoadFailedId
	InvalidTargetSpecId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Toolchain build failed!

The toolchain exited with an error while compiling one of the targets.
No bundle was written; any existing bundle at the destination is untouched.

## Common causes:
- Compiler or linker errors in the library source
- A cross-toolchain for the target architecture is not installed
- The toolchain command in your config has a typo

## Things you can try:
- Re-run with verbose mode to see the full toolchain output:
~~~
$ archbundle --verbose assemble ...
~~~

- Run the toolchain command manually for the failing target
- Check the toolchain section of your config:
~~~
$ archbundle config show
~~~`,
	}

	duplicateSliceIssue = &Issue{
		id: DuplicateSliceId,
		mdMsg: `
# Duplicate slice!

Two of the requested targets resolve to the same architecture, platform,
and variant. A bundle holds exactly one library per target triple, so the
assembly was aborted before any artifact was staged.

## Things you can try:
- Review your --target flags for repeats:
~~~
$ archbundle assemble --target arm64:device --target arm64:device ...
~~~

- If two targets genuinely need to coexist, give one of them a distinct
  variant:
~~~
$ archbundle assemble --target x86_64:desktop:musl --target x86_64:desktop:glibc ...
~~~`,
	}

	copyIntegrityFailedIssue = &Issue{
		id: CopyIntegrityFailedId,
		mdMsg: `
# Artifact copy verification failed!

A library copied into the staging area does not hash to the same value as
the freshly built artifact. The staged bundle was discarded and the
destination is untouched.

## Common causes:
- The disk is full or failing
- Another process modified the build output while assembly was running
- The staging directory lives on an unreliable filesystem (e.g. a flaky
  network mount)

## Things you can try:
- Check free disk space on the destination filesystem
- Re-run the assembly; transient interference usually does not repeat
- Move the destination off network storage`,
	}

	bundleValidationFailedIssue = &Issue{
		id: BundleValidationFailedId,
		mdMsg: `
# Bundle validation failed!

The assembled bundle did not pass its own consistency checks, so it was
not published.

## Checks performed:
- Every manifest slice has a valid architecture/platform/variant triple
- No two slices share a triple
- Every slice's library file exists inside the bundle
- All architectures are on the allow-list

## Things you can try:
- Read the individual validation findings above
- Check the allowed architectures in your config:
~~~cue
bundle: {
	allowed_architectures: ["arm64", "x86_64"]
}
~~~`,
	}

	bundleNotFoundIssue = &Issue{
		id: BundleNotFoundId,
		mdMsg: `
# Bundle not found!

The path you passed to 'archbundle validate' does not exist or is not a
bundle directory.

## Things you can try:
- Check the path for typos
- Bundle directories carry the '.bundle' suffix:
~~~
$ archbundle validate dist/peer.bundle
~~~

- List what is actually at the destination:
~~~
$ ls dist/
~~~`,
	}

	toolchainNotFoundIssue = &Issue{
		id: ToolchainNotFoundId,
		mdMsg: `
# Toolchain not configured!

No toolchain command or script is configured, so there is nothing to build
the per-target libraries with.

## Things you can try:
- Pass the command on the command line:
~~~
$ archbundle assemble --toolchain 'cargo build --release --target {arch}' ...
~~~

- Or configure it permanently:
~~~cue
toolchain: {
	mode: "exec"
	command: ["cargo", "build", "--release", "--target", "{arch}-{platform}"]
}
~~~

- See the placeholders available to toolchain templates:
~~~
$ archbundle assemble --help
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the archbundle configuration file.

## Configuration file locations:
- Linux: ~/.config/archbundle/config.cue
- macOS: ~/Library/Application Support/archbundle/config.cue
- Windows: %APPDATA%\archbundle\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ archbundle config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/archbundle/config.cue
~~~

## Example configuration:
~~~cue
toolchain: {
	mode: "shell"
	script: "make static-lib ARCH={arch} PLATFORM={platform} OUT={output}"
}

bundle: {
	allowed_architectures: ["arm64", "x86_64"]
}
~~~`,
	}

	invalidTargetSpecIssue = &Issue{
		id: InvalidTargetSpecId,
		mdMsg: `
# Invalid target specification!

A --target value could not be parsed.

## Target specification format:
~~~
<arch>:<platform>[:<variant>][@<min-os-version>]
~~~

## Examples:
~~~
$ archbundle assemble --target arm64:device@14.0
$ archbundle assemble --target arm64:simulator
$ archbundle assemble --target x86_64:desktop:musl
~~~

## Valid platforms:
- **device**
- **simulator**
- **desktop**`,
	}

	issues = map[Id]*Issue{
		buildFailedIssue.Id():            buildFailedIssue,
		duplicateSliceIssue.Id():         duplicateSliceIssue,
		copyIntegrityFailedIssue.Id():    copyIntegrityFailedIssue,
		bundleValidationFailedIssue.Id(): bundleValidationFailedIssue,
		bundleNotFoundIssue.Id():         bundleNotFoundIssue,
		toolchainNotFoundIssue.Id():      toolchainNotFoundIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		invalidTargetSpecIssue.Id():      invalidTargetSpecIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
