package seat

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// sendEphemeral spawns one fresh process for this call, streams its
// output, and returns its single result message. The process reference
// is held only for the duration of the call so Close can kill it.
func (s *Supervisor) sendEphemeral(prompt string, opts SendOptions) (*Message, error) {
	flags := s.flags.merged(opts.Overrides)
	args := append(buildArgs(flags, false), prompt)

	cmd := exec.Command(flags.command(), args...)
	cmd.Env = buildEnv(flags, os.Environ())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, spawnError(s.name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, spawnError(s.name, err)
	}

	stderrRing := newLineRing(diagnosticCapacity)

	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		s.log.Error("failed to spawn process", "error", err)
		return nil, spawnError(s.name, err)
	}

	s.log.Debug("ephemeral process started", "pid", cmd.Process.Pid)

	s.mu.Lock()
	s.current = cmd
	s.diag = stderrRing
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
	}()

	// Stderr must be drained concurrently so it is captured before
	// Wait closes the pipe.
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		sc := lineScanner(stderr)
		for sc.Scan() {
			stderrRing.Append(sc.Text())
		}
	}()

	settled := make(chan outcome, 1)
	go func() {
		var lastResult *Message

		sc := lineScanner(stdout)
		for sc.Scan() {
			msg := parseLine(sc.Text(), s.log)
			if msg == nil {
				continue
			}
			if msg.Type == "result" {
				// Last one wins; only one is expected per call.
				lastResult = msg
				continue
			}
			if opts.OnEvent != nil {
				opts.OnEvent(msg)
			}
		}

		<-stderrDone
		waitErr := cmd.Wait()

		if lastResult != nil {
			settled <- outcome{msg: lastResult}
			return
		}

		code, signal := exitStatus(waitErr)
		settled <- outcome{err: exitError(s.name, code, signal, stderrRing.String())}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case out := <-settled:
		if out.err != nil {
			s.log.Warn("ephemeral call failed", "error", out.err)
			return nil, out.err
		}
		return extractResult(s.name, out.msg)
	case <-timer.C:
		s.log.Warn("ephemeral call timed out, killing process", "timeout", s.timeout)
		cmd.Process.Kill()
		<-settled
		return nil, timeoutError(s.name, s.timeout)
	}
}

// exitStatus extracts the exit code and, when the process was signaled,
// the signal name from a Wait error. A clean exit reports code 0.
func exitStatus(err error) (code int, signal string) {
	if err == nil {
		return 0, ""
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return -1, ws.Signal().String()
		}
		return ee.ExitCode(), ""
	}
	return -1, ""
}
