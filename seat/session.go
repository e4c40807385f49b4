package seat

import (
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"time"
)

// userTurn is the outbound wire record for one prompt in persistent
// mode: one JSON object per line on the process's stdin.
type userTurn struct {
	Type    string `json:"type"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	SessionID       string  `json:"session_id"`
	ParentToolUseID *string `json:"parent_tool_use_id"`
}

// spawnLocked starts the persistent process and its three goroutines:
// the consume loop on stdout, the stderr drain, and the exit monitor.
// Caller must hold s.mu.
func (s *Supervisor) spawnLocked() error {
	args := buildArgs(s.flags, true)
	cmd := exec.Command(s.flags.command(), args...)
	cmd.Env = buildEnv(s.flags, os.Environ())

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return spawnError(s.name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return spawnError(s.name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return spawnError(s.name, err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		s.log.Error("failed to spawn process", "error", err)
		return spawnError(s.name, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.waitDone = make(chan struct{})
	s.alive = true
	s.gen++

	gen := s.gen
	ring := s.diag
	waitDone := s.waitDone
	stderrDone := make(chan struct{})

	s.log.Info("session process started", "pid", cmd.Process.Pid)

	go s.consumeLoop(gen, stdout, ring)
	go drainStderr(stderr, ring, stderrDone)
	go s.monitorExit(gen, cmd, waitDone, stderrDone, ring)

	return nil
}

// consumeLoop reads the process's stdout line by line for the life of
// one process generation. Session-init messages set the session id;
// result messages feed the token accountant and resolve the pending
// continuation; everything else is ignored.
func (s *Supervisor) consumeLoop(gen int, stdout io.ReadCloser, ring *lineRing) {
	sc := lineScanner(stdout)
	for sc.Scan() {
		msg := parseLine(sc.Text(), s.log)
		if msg == nil {
			continue
		}

		switch msg.Type {
		case "system":
			if msg.Subtype == "init" && msg.SessionID != "" {
				s.mu.Lock()
				if s.gen == gen {
					s.sessionID = msg.SessionID
				}
				s.mu.Unlock()
				s.log.Debug("session initialized", "sessionID", msg.SessionID)
			}

		case "result":
			s.handleResult(gen, msg)
		}
	}

	// Stream closed while still live means the process died under us.
	s.processDied(gen, exitError(s.name, -1, "", ring.String()))
}

// handleResult accounts the result's token usage, resolves the pending
// continuation, and kicks off a background recycle when the cumulative
// count crosses the limit. The caller gets its result first; the
// recycle never blocks it.
func (s *Supervisor) handleResult(gen int, msg *Message) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	prev := s.tokens
	s.tokens += msg.Usage.Total()
	total := s.tokens
	crossed := prev < s.tokenLimit && total >= s.tokenLimit
	p := s.pending
	s.pending = nil
	s.mu.Unlock()

	if p != nil {
		p.ch <- outcome{msg: msg}
	}

	if crossed {
		s.log.Info("token limit reached, recycling in background", "tokens", total, "limit", s.tokenLimit)
		go func() {
			if err := s.Recycle(); err != nil {
				s.log.Error("background recycle failed", "error", err)
			}
		}()
	}
}

// drainStderr appends the process's stderr lines to the diagnostic
// ring. Must run concurrently with the process so the pipe is drained
// before Wait closes it.
func drainStderr(stderr io.ReadCloser, ring *lineRing, done chan struct{}) {
	defer close(done)
	sc := lineScanner(stderr)
	for sc.Scan() {
		ring.Append(sc.Text())
	}
}

// monitorExit is the sole caller of cmd.Wait for the persistent
// process. It signals waitDone for Close, waits for stderr to finish
// draining, then treats the exit as unexpected unless liveness was
// already cleared.
func (s *Supervisor) monitorExit(gen int, cmd *exec.Cmd, waitDone, stderrDone chan struct{}, ring *lineRing) {
	waitErr := cmd.Wait()
	close(waitDone)
	<-stderrDone

	code, signal := exitStatus(waitErr)
	s.processDied(gen, exitError(s.name, code, signal, ring.String()))
}

// processDied handles an unexpected death of generation gen: flips
// liveness and rejects the pending continuation. A stale generation, or
// one already torn down by Close, is a no-op, so the exit monitor and
// the consume loop can both report without double-rejecting.
func (s *Supervisor) processDied(gen int, cause *Error) {
	s.mu.Lock()
	if s.gen != gen || !s.alive {
		s.mu.Unlock()
		return
	}
	s.alive = false
	s.cmd = nil
	s.stdin = nil
	p := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.log.Warn("session process died", "error", cause)

	if p != nil {
		p.ch <- outcome{err: cause}
	}
}

// sendPersistent writes one user turn to the session process and awaits
// the next result from the consume loop.
func (s *Supervisor) sendPersistent(prompt string) (*Message, error) {
	s.mu.Lock()
	if !s.alive || s.stdin == nil {
		s.mu.Unlock()
		return nil, notRunningError(s.name)
	}
	p := &pending{ch: make(chan outcome, 1)}
	s.pending = p
	gen := s.gen
	stdin := s.stdin
	cmd := s.cmd
	turn := userTurn{Type: "user", SessionID: s.sessionID}
	s.mu.Unlock()

	turn.Message.Role = "user"
	turn.Message.Content = prompt

	data, err := json.Marshal(turn)
	if err != nil {
		s.mu.Lock()
		if s.pending == p {
			s.pending = nil
		}
		s.mu.Unlock()
		return nil, &Error{Kind: KindExit, Seat: s.name, Msg: "failed to encode user turn", Err: err}
	}
	data = append(data, '\n')

	if _, err := stdin.Write(data); err != nil {
		// A write can race a process that is already exiting; flip
		// liveness and report, never panic up through a pipe fault.
		s.log.Warn("stdin write failed", "error", err)
		s.mu.Lock()
		if s.gen == gen {
			s.alive = false
		}
		if s.pending == p {
			s.pending = nil
		}
		s.mu.Unlock()
		return nil, &Error{Kind: KindExit, Seat: s.name, Msg: "write to process failed", Err: err}
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case out := <-p.ch:
		if out.err != nil {
			return nil, out.err
		}
		return extractResult(s.name, out.msg)
	case <-timer.C:
		// Timeout destroys the session; the caller or Restart is
		// responsible for reconnecting.
		s.log.Warn("call timed out, killing session process", "timeout", s.timeout)
		s.mu.Lock()
		if s.pending == p {
			s.pending = nil
		}
		s.mu.Unlock()
		if cmd != nil && cmd.Process != nil {
			cmd.Process.Kill()
		}
		return nil, timeoutError(s.name, s.timeout)
	}
}
