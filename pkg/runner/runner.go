package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
	"github.com/wolfhost/botpanel-backend/pkg/domain/errs"
)

// LogSink receives one line of command output. Implementations must not
// block the producer; sink calls never fail the runner.
type LogSink func(level entities.LogLevel, message string)

// Command is one pipeline step or the final long-lived bot process.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

func (c Command) build(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	// Never prompt for credentials inside a pipeline step.
	cmd.Env = append(cmd.Env, "GIT_TERMINAL_PROMPT=0")
	return cmd
}

// ExitResult is the observed end of a supervised process.
type ExitResult struct {
	Code int
	Err  error
}

// Handle supervises a started long-lived process. Done delivers exactly one
// ExitResult once the process has exited and both output streams drained.
type Handle struct {
	PID  int
	Done <-chan ExitResult

	process *os.Process
	exited  chan struct{}
}

// Terminate asks the process to exit and kills it after the grace period.
// It returns immediately; callers observe the actual exit via Done.
func (h *Handle) Terminate(grace time.Duration) {
	if h.process == nil {
		return
	}
	_ = h.process.Signal(syscall.SIGTERM)
	go func() {
		select {
		case <-h.exited:
		case <-time.After(grace):
			_ = h.process.Kill()
		}
	}()
}

// Kill terminates the process immediately.
func (h *Handle) Kill() {
	if h.process != nil {
		_ = h.process.Kill()
	}
}

// Run executes one pipeline step to completion, streaming stdout as info and
// stderr as warn lines into the sink. A non-zero exit yields a
// PipelineStepError; an unstartable command yields a SpawnError.
func Run(ctx context.Context, command Command, sink LogSink) error {
	cmd := command.build(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errs.SpawnError{Command: command.Name, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errs.SpawnError{Command: command.Name, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &errs.SpawnError{Command: command.Name, Err: err}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		streamLines(stdout, entities.LogLevelInfo, sink)
	}()
	go func() {
		defer wg.Done()
		streamLines(stderr, entities.LogLevelWarn, sink)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return &errs.PipelineStepError{Command: command.Name, Code: exitCode(err)}
	}
	return nil
}

// Start launches the long-lived bot process and returns as soon as it is up.
// Output streaming and exit observation continue for the whole process
// lifetime on background goroutines.
func Start(ctx context.Context, command Command, sink LogSink) (*Handle, error) {
	cmd := command.build(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &errs.SpawnError{Command: command.Name, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &errs.SpawnError{Command: command.Name, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &errs.SpawnError{Command: command.Name, Err: err}
	}

	done := make(chan ExitResult, 1)
	exited := make(chan struct{})
	handle := &Handle{
		PID:     cmd.Process.Pid,
		Done:    done,
		process: cmd.Process,
		exited:  exited,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		streamLines(stdout, entities.LogLevelInfo, sink)
	}()
	go func() {
		defer wg.Done()
		streamLines(stderr, entities.LogLevelWarn, sink)
	}()

	go func() {
		wg.Wait()
		err := cmd.Wait()
		close(exited)
		if err != nil {
			done <- ExitResult{Code: exitCode(err), Err: err}
			return
		}
		done <- ExitResult{Code: 0}
	}()

	return handle, nil
}

func streamLines(r io.Reader, level entities.LogLevel, sink LogSink) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			sink(level, line)
		}
	}
}

func exitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
