package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/total70/journal-ai/internal/llm"
)

// InstallURL is where file-journal can be obtained.
const InstallURL = "https://github.com/total70/file-journal"

var (
	ErrToolUnavailable = errors.New("journaling tool unavailable")
	ErrToolFailed      = errors.New("journaling tool failed")
)

// Journal stores a finished entry and returns where it went.
type Journal interface {
	Create(ctx context.Context, title, content string) (string, error)
}

// Checker is implemented by journals that can verify they are usable
// before any work is done.
type Checker interface {
	Check(ctx context.Context) error
}

// ToolFailedError reports a non-zero exit of the journaling tool.
type ToolFailedError struct {
	Binary string
	Stderr string
	Err    error
}

func (e *ToolFailedError) Error() string {
	return fmt.Sprintf("%s failed: %v: %s", e.Binary, e.Err, e.Stderr)
}

func (e *ToolFailedError) Unwrap() error { return e.Err }

func (e *ToolFailedError) Is(target error) bool {
	return target == ErrToolFailed
}

// EnsureExtension appends the entry file extension unless already present.
func EnsureExtension(title string) string {
	if strings.HasSuffix(title, llm.Extension) {
		return title
	}
	return title + llm.Extension
}

// FileJournal creates entries by running `file-journal new <title> <content>`.
type FileJournal struct {
	Binary string
}

// New creates a FileJournal for the given binary name or path.
func New(binary string) *FileJournal {
	if binary == "" {
		binary = "file-journal"
	}
	return &FileJournal{Binary: binary}
}

func (f *FileJournal) unavailable(err error) error {
	return fmt.Errorf("%w: %s not found in PATH. Please install it first: %s\nError: %v",
		ErrToolUnavailable, f.Binary, InstallURL, err)
}

// Check verifies the binary exists and responds to --help.
func (f *FileJournal) Check(ctx context.Context) error {
	path, err := exec.LookPath(f.Binary)
	if err != nil {
		return f.unavailable(err)
	}
	if err := exec.CommandContext(ctx, path, "--help").Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return f.unavailable(err)
		}
	}
	return nil
}

// Create runs the tool and returns its trimmed standard output.
func (f *FileJournal) Create(ctx context.Context, title, content string) (string, error) {
	title = EnsureExtension(title)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Binary, "new", title, content)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ToolFailedError{Binary: f.Binary, Stderr: strings.TrimSpace(stderr.String()), Err: err}
		}
		return "", f.unavailable(err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// DryRun reports the invocation FileJournal would perform without running it.
type DryRun struct {
	Binary string
}

// Create returns a description of the command that would be run.
func (d DryRun) Create(_ context.Context, title, content string) (string, error) {
	binary := d.Binary
	if binary == "" {
		binary = "file-journal"
	}
	title = EnsureExtension(title)

	return fmt.Sprintf("[DRY RUN] Would create:\n  Title: %s\n  Content: %s\n  Command: %s new %s %s",
		title, content, binary, shellQuote(title), shellQuote(content)), nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
