// Package executor runs external CLI commands with bounded timeouts,
// optional line-streaming, and process-group cleanup. It knows nothing about
// adapters or prompts; it only runs one command and reports what happened.
package executor

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds a run when neither the executor nor the call
// specifies one.
const DefaultTimeout = 300 * time.Second

// pollInterval is how often the streaming loop re-checks the deadline while
// no output is arriving, so a hung child is killed close to the requested
// timeout.
const pollInterval = 100 * time.Millisecond

// Result captures everything observed about one subprocess invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	WallTime time.Duration
	TimedOut bool

	// TTFT is the time from start to the first non-whitespace stdout line.
	// Zero when not streaming or when no such line was seen.
	TTFT time.Duration

	// Chunks holds each stdout line delivered to the stream callback, in
	// order. Empty unless streaming.
	Chunks []string
}

// Options configures a single Run call.
type Options struct {
	// Stdin, when non-empty, is written to the child's standard input and
	// the stream is closed to signal EOF.
	Stdin string

	// Dir is the working directory for the child. Empty means inherit.
	Dir string

	// Timeout overrides the executor default when positive.
	Timeout time.Duration

	// OnLine, when set, switches the run into streaming mode: every
	// complete stdout line is passed to it synchronously, in order, on the
	// calling goroutine. Stderr lines are collected but never streamed.
	OnLine func(line string)
}

// Executor runs subprocesses. The zero value is usable; Timeout and Env
// apply to every Run call unless overridden per call.
type Executor struct {
	Timeout time.Duration
	Env     map[string]string
}

// New returns an Executor with the given default timeout.
func New(timeout time.Duration) *Executor {
	return &Executor{Timeout: timeout}
}

// exit codes for outcomes the executor synthesizes itself.
const (
	exitSpawnError = 1
	exitNotFound   = 127
)

// Run executes args[0] with the remaining arguments and returns a Result.
// Operational failures (binary missing, spawn error, timeout) are reported
// in the Result, never as a panic or error return. Cancelling ctx kills the
// process group like a timeout does. An empty args slice is a programmer
// error and panics.
func (e *Executor) Run(ctx context.Context, args []string, opts Options) Result {
	if len(args) == 0 {
		panic("executor: empty argv")
	}

	start := time.Now()
	timeout := e.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return Result{
			Stderr:   "Command not found: " + args[0],
			ExitCode: exitNotFound,
			WallTime: time.Since(start),
		}
	}

	cmd := exec.Command(path, args[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = e.environ()
	// Own process group so a timeout can kill the whole subtree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	if opts.OnLine != nil {
		return e.runStreaming(ctx, cmd, opts, start, timeout)
	}
	return e.runBlocking(ctx, cmd, start, timeout)
}

// RunWithStdinPrompt runs args with the prompt delivered over stdin. It is
// deliberately a named operation: prompts go over stdin, never argv, because
// argv is visible to other local users via process listings.
func (e *Executor) RunWithStdinPrompt(ctx context.Context, args []string, prompt string, opts Options) Result {
	opts.Stdin = prompt
	return e.Run(ctx, args, opts)
}

func (e *Executor) runBlocking(ctx context.Context, cmd *exec.Cmd, start time.Time, timeout time.Duration) Result {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{
			Stderr:   "Execution error: " + err.Error(),
			ExitCode: exitSpawnError,
			WallTime: time.Since(start),
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var timedOut bool
	select {
	case <-done:
	case <-timer.C:
		timedOut = true
		killGroup(cmd)
		<-done
	case <-ctx.Done():
		killGroup(cmd)
		<-done
	}

	return Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		WallTime: time.Since(start),
		TimedOut: timedOut,
	}
}

func (e *Executor) runStreaming(ctx context.Context, cmd *exec.Cmd, opts Options, start time.Time, timeout time.Duration) Result {
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{Stderr: "Execution error: " + err.Error(), ExitCode: exitSpawnError, WallTime: time.Since(start)}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{Stderr: "Execution error: " + err.Error(), ExitCode: exitSpawnError, WallTime: time.Since(start)}
	}

	if err := cmd.Start(); err != nil {
		return Result{Stderr: "Execution error: " + err.Error(), ExitCode: exitSpawnError, WallTime: time.Since(start)}
	}

	outCh := readLines(stdoutPipe)
	errCh := readLines(stderrPipe)

	var stdout, stderr strings.Builder
	var chunks []string
	var ttft time.Duration
	deadline := start.Add(timeout)
	timedOut := false
	killed := false
	ctxDone := ctx.Done()

	// Multiplex the two line channels on the calling goroutine so the
	// callback is never invoked concurrently and stdout order is preserved.
	for outCh != nil || errCh != nil {
		if !killed && time.Now().After(deadline) {
			timedOut = true
			killed = true
			killGroup(cmd)
			// Keep draining: the kill closes the pipes, the reader
			// goroutines hit EOF, and the channels close.
		}

		poll := time.NewTimer(pollInterval)
		select {
		case line, ok := <-outCh:
			poll.Stop()
			if !ok {
				outCh = nil
				continue
			}
			stdout.WriteString(line)
			stdout.WriteByte('\n')
			chunks = append(chunks, line)
			opts.OnLine(line)
			if ttft == 0 && strings.TrimSpace(line) != "" {
				ttft = time.Since(start)
			}
		case line, ok := <-errCh:
			poll.Stop()
			if !ok {
				errCh = nil
				continue
			}
			stderr.WriteString(line)
			stderr.WriteByte('\n')
		case <-poll.C:
			// Re-check the deadline.
		case <-ctxDone:
			poll.Stop()
			ctxDone = nil
			if !killed {
				killed = true
				killGroup(cmd)
			}
		}
	}

	_ = cmd.Wait()

	return Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		WallTime: time.Since(start),
		TimedOut: timedOut,
		TTFT:     ttft,
		Chunks:   chunks,
	}
}

// readLines scans r line by line into a channel that is closed at EOF.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		// Allow up to 1MB per line for large model outputs.
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

// killGroup forcefully terminates the child's process group, falling back to
// a direct kill of the immediate child. A process that is already gone is
// treated as success.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

func (e *Executor) environ() []string {
	if len(e.Env) == 0 {
		return nil
	}
	env := os.Environ()
	for k, v := range e.Env {
		env = append(env, k+"="+v)
	}
	return env
}
