package fleetcli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	"golang.org/x/sync/errgroup"

	"fleetdeck/internal/config"
	"fleetdeck/pkg/logging"
)

const runnerSubsystem = "Runner"

// maxLineLength bounds a single line of tool output. Debug dumps can be long.
const maxLineLength = 4 * 1024 * 1024

// Positional is a value the subcommand takes as a bare argument.
type Positional struct {
	Name        string
	Prompt      string
	Placeholder string
	Required    bool
}

// Request describes one interactive invocation.
type Request struct {
	Subcommand string
	// Title names the invocation in status messages. Defaults to Subcommand.
	Title string

	Positionals []Positional
	// Values pre-fills positionals in order; missing ones are prompted for.
	Values []string

	// App overrides the defaultApp setting.
	App string

	// Trailing is free-form text appended to the command line. When empty
	// and PromptTrailing is set, the user is asked for it.
	Trailing       string
	PromptTrailing bool
}

// Result is the outcome of a tool invocation that started.
type Result struct {
	InvocationID string
	Args         []string
	ExitCode     int
	Stdout       string
	Stderr       string
	Duration     time.Duration
}

// OK reports whether the tool exited zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Records parses a list invocation. Debug traces are written to stderr, so
// the debug dump strategy sees both streams.
func (r Result) Records() []Record {
	return ParseOutput(r.Stdout, r.Stderr)
}

// RunnerOptions configures a Runner. Only Settings is required.
type RunnerOptions struct {
	// Settings is called at the start of every invocation.
	Settings func() (config.Settings, error)
	// Schemas is shared by every runner of the process. A new cache backed
	// by the runner's help lookup is created when nil.
	Schemas  *SchemaCache
	Prompter Prompter
	Sink     Sink
	Status   StatusIndicator
}

// Runner assembles command lines and runs the fleet tool.
type Runner struct {
	settings func() (config.Settings, error)
	schemas  *SchemaCache
	prompter Prompter
	sink     Sink
	status   StatusIndicator
}

// NewRunner creates a runner from opts.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		settings: opts.Settings,
		schemas:  opts.Schemas,
		prompter: opts.Prompter,
		sink:     opts.Sink,
		status:   opts.Status,
	}
	if r.settings == nil {
		r.settings = func() (config.Settings, error) { return config.GetDefaultSettings(), nil }
	}
	if r.sink == nil {
		r.sink = discardSink{}
	}
	if r.status == nil {
		r.status = noopStatus{}
	}
	if r.schemas == nil {
		r.schemas = NewSchemaCache(r.FetchHelp, func() bool {
			s, err := r.settings()
			return err == nil && s.BroadSchemaMatch()
		})
	}
	return r
}

// Schemas returns the schema cache used by the runner.
func (r *Runner) Schemas() *SchemaCache {
	return r.schemas
}

// Sink returns the log sink the runner writes to.
func (r *Runner) Sink() Sink {
	return r.sink
}

// Run performs an interactive invocation. Prompt cancellation returns
// ErrCanceled and an empty required answer returns *MissingInputError; in
// both cases the tool is not started. A tool that exits non-zero is reported
// through Result, not as an error.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	settings, err := r.settings()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load settings: %w", err)
	}

	schema := r.schemas.Infer(ctx, req.Subcommand)

	app := req.App
	if app == "" {
		app = settings.DefaultApp
	}
	if app == "" && schema.AppRequired {
		app, err = r.ask(ctx, Question{
			Key:         "app",
			Prompt:      "App name",
			Placeholder: "my-app",
			Required:    true,
		})
		if err != nil {
			return Result{}, err
		}
	}

	positionals := make([]string, 0, len(req.Positionals))
	for i, p := range req.Positionals {
		value := ""
		if i < len(req.Values) {
			value = strings.TrimSpace(req.Values[i])
		}
		if value == "" {
			value, err = r.ask(ctx, Question{
				Key:         p.Name,
				Prompt:      p.Prompt,
				Placeholder: p.Placeholder,
				Required:    p.Required,
			})
			if err != nil {
				return Result{}, err
			}
		}
		positionals = append(positionals, value)
	}

	trailingText := req.Trailing
	if trailingText == "" && req.PromptTrailing {
		trailingText, err = r.ask(ctx, Question{
			Key:         "args",
			Prompt:      "Additional arguments",
			Placeholder: "--flag value",
		})
		if err != nil {
			return Result{}, err
		}
	}
	trailing, err := shellwords.Parse(trailingText)
	if err != nil {
		return Result{}, fmt.Errorf("invalid arguments %q: %w", trailingText, err)
	}

	plan := BuildArgs(ArgsInput{
		Subcommand:  req.Subcommand,
		Positionals: positionals,
		App:         app,
		Schema:      schema,
		Defaults:    defaultsFrom(settings),
		Trailing:    trailing,
	})
	for _, token := range plan.Stripped {
		r.sink.Printf("Notice: dropped %q, %s now takes %s", token, req.Subcommand, FlagDeveloperName)
		logging.Warn(runnerSubsystem, "Dropped deprecated token %q for %s", token, req.Subcommand)
	}

	title := req.Title
	if title == "" {
		title = req.Subcommand
	}
	return r.execute(ctx, settings, title, plan.Args, true)
}

// Capture runs subcommand non-interactively with the configured defaults and
// extra arguments. Output is streamed to the sink only with verboseLogging.
func (r *Runner) Capture(ctx context.Context, subcommand string, extra ...string) (Result, error) {
	settings, err := r.settings()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load settings: %w", err)
	}

	schema := r.schemas.Infer(ctx, subcommand)
	if schema.AppRequired && settings.DefaultApp == "" {
		return Result{}, &MissingInputError{Field: "app"}
	}

	plan := BuildArgs(ArgsInput{
		Subcommand: subcommand,
		App:        settings.DefaultApp,
		Schema:     schema,
		Defaults:   defaultsFrom(settings),
		Trailing:   extra,
	})
	return r.execute(ctx, settings, subcommand, plan.Args, settings.VerboseLogging)
}

func defaultsFrom(s config.Settings) Defaults {
	return Defaults{
		Addon:         s.DefaultAddon,
		Connection:    s.DefaultConnection,
		Authorization: s.DefaultAuthorization,
	}
}

// ask prompts once. An empty answer to a required question is a
// MissingInputError; a dismissed prompt is ErrCanceled.
func (r *Runner) ask(ctx context.Context, q Question) (string, error) {
	if r.prompter == nil {
		if q.Required {
			return "", &MissingInputError{Field: q.Key}
		}
		return "", nil
	}
	answer, err := r.prompter.Ask(ctx, q)
	if err != nil {
		if errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled) {
			logging.Debug(runnerSubsystem, "Prompt %q canceled", q.Key)
			return "", ErrCanceled
		}
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" && q.Required {
		r.sink.Printf("Warning: %s is required, nothing was run", q.Key)
		logging.Warn(runnerSubsystem, "Required input %q left empty", q.Key)
		return "", &MissingInputError{Field: q.Key}
	}
	return answer, nil
}

// execute spawns the tool. stream controls whether the command line and raw
// output are written to the sink; the closing status line always is.
func (r *Runner) execute(ctx context.Context, settings config.Settings, title string, args []string, stream bool) (Result, error) {
	tool := settings.Tool()
	id := newInvocationID()
	result := Result{InvocationID: id, Args: args}

	cmd := execCommandContext(ctx, tool, args...)
	cmd.Env = MergeEnv(cmd.Environ(), EnvOverrides(firstArg(args), settings))

	if stream || settings.VerboseLogging {
		r.sink.Printf("[%s] $ %s", id, commandLine(tool, args))
	}
	logging.Debug(runnerSubsystem, "[%s] exec %s", id, commandLine(tool, args))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, &SpawnError{Tool: tool, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return result, &SpawnError{Tool: tool, Err: err}
	}

	r.status.Start(fmt.Sprintf("Running %s %s", tool, title))
	start := time.Now()

	if err := cmd.Start(); err != nil {
		r.status.Stop(false, fmt.Sprintf("%s %s could not start", tool, title))
		r.sink.Printf("[%s] failed to start %s: %v", id, tool, err)
		logging.Error(runnerSubsystem, err, "Failed to start %s", tool)
		return result, &SpawnError{Tool: tool, Err: err}
	}

	var outBuf, errBuf strings.Builder
	var g errgroup.Group
	g.Go(func() error { return r.collect(stdout, &outBuf, id, stream) })
	g.Go(func() error { return r.collect(stderr, &errBuf, id, stream) })
	readErr := g.Wait()
	waitErr := cmd.Wait()

	result.Stdout = outBuf.String()
	result.Stderr = errBuf.String()
	result.Duration = time.Since(start)
	if readErr != nil {
		logging.Warn(runnerSubsystem, "[%s] output truncated: %v", id, readErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			r.status.Stop(false, fmt.Sprintf("%s %s failed", tool, title))
			r.sink.Printf("[%s] %s failed: %v", id, tool, waitErr)
			return result, &SpawnError{Tool: tool, Err: waitErr}
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if result.OK() {
		r.status.Stop(true, fmt.Sprintf("%s %s finished", tool, title))
		r.sink.Printf("[%s] exit 0 (%s)", id, result.Duration.Round(time.Millisecond))
	} else {
		r.status.Stop(false, fmt.Sprintf("%s %s exited with code %d", tool, title, result.ExitCode))
		r.sink.Printf("[%s] exit %d (%s)", id, result.ExitCode, result.Duration.Round(time.Millisecond))
		if !stream && result.Stderr != "" {
			r.sink.Printf("[%s] %s", id, strings.TrimSpace(result.Stderr))
		}
		logging.Warn(runnerSubsystem, "[%s] %s exited with code %d", id, commandLine(tool, args), result.ExitCode)
	}
	return result, nil
}

// collect copies src into buf line by line, mirroring each line to the sink
// when stream is set.
func (r *Runner) collect(src io.Reader, buf *strings.Builder, id string, stream bool) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteString("\n")
		if stream {
			r.sink.Printf("[%s] %s", id, line)
		}
	}
	if err := scanner.Err(); err != nil {
		// Drain so the child is not blocked on a full pipe.
		_, _ = io.Copy(io.Discard, src)
		return err
	}
	return nil
}

// FetchHelp returns the output of "<tool> <subcommand> --help". A non-zero
// exit still yields the captured text; only a failure to start is an error.
func (r *Runner) FetchHelp(ctx context.Context, subcommand string) (string, error) {
	settings, err := r.settings()
	if err != nil {
		return "", err
	}
	tool := settings.Tool()

	cmd := execCommandContext(ctx, tool, subcommand, "--help")
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), nil
		}
		return "", &SpawnError{Tool: tool, Err: err}
	}
	return string(output), nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// commandLine renders tool and args for display, quoting arguments that
// contain spaces.
func commandLine(tool string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, tool)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// newInvocationID returns a short id that tags every sink line of one run.
func newInvocationID() string {
	return uuid.NewString()[:8]
}
