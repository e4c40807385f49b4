// Package seat supervises OS subprocesses running a command-line AI
// model tool. A Supervisor owns one logical model seat and exposes a
// single Send contract across two process-lifetime strategies: ephemeral
// (one process per call) and persistent (one long-lived session process
// reused across calls, recycled when its token budget is spent).
package seat

import (
	"bufio"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calderlane/modelseat/logger"
)

const (
	// DefaultTokenLimit is the cumulative token threshold that triggers a
	// background recycle of a persistent seat.
	DefaultTokenLimit = 20000

	// DefaultTimeout is the per-call window before the in-flight process
	// is killed and the call rejected.
	DefaultTimeout = 120 * time.Second

	// maxRestartAttempts bounds Restart's backoff-and-retry loop.
	maxRestartAttempts = 3

	restartBaseDelay = time.Second
	restartMaxDelay  = 30 * time.Second
)

// Options configures a Supervisor beyond its flags.
type Options struct {
	// TokenLimit is the cumulative token count at which a persistent
	// seat is recycled. Zero applies DefaultTokenLimit.
	TokenLimit int

	// Streaming selects persistent mode: one long-lived process reused
	// across calls. When false each Send spawns a fresh process.
	Streaming bool

	// Timeout is the per-call window. Zero applies DefaultTimeout.
	Timeout time.Duration
}

// SendOptions carries per-call settings for SendWith.
type SendOptions struct {
	// Overrides layers set fields over the seat's base flags for this
	// call only. Ephemeral mode only.
	Overrides *Flags

	// OnEvent, when set, receives every decoded non-result message.
	// Ephemeral mode only. Called from the output reader goroutine.
	OnEvent func(*Message)
}

// outcome is what a settled call delivers: a result message or an error,
// never both.
type outcome struct {
	msg *Message
	err error
}

// pending is the single outstanding continuation slot of a persistent
// seat. The channel is buffered so resolvers never block.
type pending struct {
	ch chan outcome
}

// Supervisor manages the subprocesses behind one model seat. All calls
// against one instance are strictly serialized; distinct instances are
// fully independent. Not safe to share a single instance expecting
// concurrent results; use one instance per logical concurrent seat.
type Supervisor struct {
	// id identifies this supervisor instance across recycles; the
	// announced session id changes with every spawned process, this
	// does not.
	id string

	name       string
	flags      Flags
	tokenLimit int
	streaming  bool
	timeout    time.Duration
	log        *slog.Logger

	// ticket admits one call at a time, FIFO.
	ticket chan struct{}

	mu        sync.Mutex
	alive     bool
	sessionID string
	tokens    int
	diag      *lineRing

	// gen increments on every persistent spawn so goroutines from a
	// replaced process can detect they are stale.
	gen int

	// Persistent process state. Non-nil only while alive in streaming
	// mode; cleared together with the liveness flag.
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	waitDone chan struct{}
	pending  *pending

	// current is the in-flight ephemeral process, held only so an
	// external Close can kill it mid-call.
	current *exec.Cmd
}

// New creates a Supervisor bound to name and flags. Nothing is spawned
// until Start.
func New(name string, flags Flags, opts Options) *Supervisor {
	if opts.TokenLimit <= 0 {
		opts.TokenLimit = DefaultTokenLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	id := uuid.New().String()
	return &Supervisor{
		id:         id,
		name:       name,
		flags:      flags,
		tokenLimit: opts.TokenLimit,
		streaming:  opts.Streaming,
		timeout:    opts.Timeout,
		log:        logger.WithSeat(name).With("seatID", id),
		ticket:     make(chan struct{}, 1),
		diag:       newLineRing(diagnosticCapacity),
	}
}

// Start marks the seat live. In persistent mode it spawns the session
// process, resets the token counter and session id, and launches the
// consume loop. Calling Start on a live seat is a no-op.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive {
		return nil
	}

	s.tokens = 0
	s.sessionID = ""
	s.diag = newLineRing(diagnosticCapacity)

	if !s.streaming {
		s.alive = true
		return nil
	}

	return s.spawnLocked()
}

// Send submits a prompt and blocks until its result, an error, or the
// per-call timeout. Calls are admitted strictly one at a time in FIFO
// order; a second Send never spawns or writes until the first settles.
func (s *Supervisor) Send(prompt string) (*Message, error) {
	return s.SendWith(prompt, SendOptions{})
}

// SendWith is Send with per-call overrides and an event callback.
func (s *Supervisor) SendWith(prompt string, opts SendOptions) (*Message, error) {
	s.ticket <- struct{}{}
	defer func() { <-s.ticket }()

	if s.streaming {
		return s.sendPersistent(prompt)
	}
	return s.sendEphemeral(prompt, opts)
}

// Recycle tears the seat down and starts it fresh, preserving
// configuration. In persistent mode this spawns a new process with a
// zero token count and no session id yet.
func (s *Supervisor) Recycle() error {
	s.log.Info("recycling seat")
	s.Close()
	return s.Start()
}

// Restart is the caller-invoked recovery path after an unexpected exit.
// It backs off min(1s * 2^attempt, 30s), then recycles; on failure it
// retries with attempt+1 until maxRestartAttempts, then returns the
// last error.
func (s *Supervisor) Restart(attempt int) error {
	delay := restartBaseDelay << attempt
	if delay > restartMaxDelay || delay <= 0 {
		delay = restartMaxDelay
	}
	s.log.Info("restarting seat", "attempt", attempt, "delay", delay)
	time.Sleep(delay)

	err := s.Recycle()
	if err == nil {
		return nil
	}
	if attempt < maxRestartAttempts {
		s.log.Warn("restart attempt failed, retrying", "attempt", attempt, "error", err)
		return s.Restart(attempt + 1)
	}
	s.log.Error("restart attempts exhausted", "attempts", attempt, "error", err)
	return err
}

// Close kills any owned process, rejects a pending continuation, and
// clears liveness and session id. Idempotent.
func (s *Supervisor) Close() {
	s.mu.Lock()
	wasAlive := s.alive
	s.alive = false
	s.sessionID = ""

	p := s.pending
	s.pending = nil

	cmd := s.cmd
	s.cmd = nil
	stdin := s.stdin
	s.stdin = nil
	waitDone := s.waitDone
	s.waitDone = nil

	current := s.current
	s.mu.Unlock()

	if wasAlive {
		s.log.Debug("closing seat")
	}

	if p != nil {
		p.ch <- outcome{err: notRunningError(s.name)}
	}

	// Close stdin first so a cooperative process can exit on EOF;
	// monitorExit is the sole Wait caller and signals waitDone.
	if stdin != nil {
		stdin.Close()
	}
	if cmd != nil && cmd.Process != nil && waitDone != nil {
		select {
		case <-waitDone:
		case <-time.After(2 * time.Second):
			s.log.Debug("force killing process")
			cmd.Process.Kill()
			<-waitDone
		}
	}

	if current != nil && current.Process != nil {
		current.Process.Kill()
	}
}

// Alive reports whether the seat accepts sends.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// ID returns the supervisor's unique instance identifier. It is stable
// across recycles and restarts.
func (s *Supervisor) ID() string {
	return s.id
}

// Name returns the seat's label.
func (s *Supervisor) Name() string {
	return s.name
}

// TokenCount returns the tokens consumed since the last recycle.
func (s *Supervisor) TokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// SessionID returns the session identifier announced by the persistent
// process, or the empty string until one arrives.
func (s *Supervisor) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Diagnostics returns the recent stderr lines, newline-joined.
func (s *Supervisor) Diagnostics() string {
	s.mu.Lock()
	diag := s.diag
	s.mu.Unlock()
	return diag.String()
}

// lineScanner wraps a reader for line-by-line consumption shared by the
// ephemeral and persistent readers.
func lineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return sc
}
