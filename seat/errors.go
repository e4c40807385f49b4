package seat

import (
	"fmt"
	"time"
)

// Kind classifies supervisor errors so callers can branch on the failure
// mode without string matching.
type Kind string

const (
	// KindSpawn means the process could not be started at all.
	KindSpawn Kind = "spawn"
	// KindTimeout means no result arrived within the configured window.
	// The process has been forcibly killed.
	KindTimeout Kind = "timeout"
	// KindExit means the process ended, or its output stream closed,
	// without producing a usable result.
	KindExit Kind = "exit"
	// KindTool means the tool returned a structurally valid result that
	// it flagged as an error.
	KindTool Kind = "tool"
)

// Error is the single error type surfaced by a Supervisor. Kind tags the
// failure mode; ExitCode, Signal, and Stderr carry detail when available.
type Error struct {
	Kind     Kind
	Seat     string
	Msg      string
	ExitCode int    // valid for KindExit when the process exited normally
	Signal   string // set for KindExit when the process was signaled
	Stderr   string // captured stderr tail, when any
	Err      error  // underlying cause, when any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("seat %s: %s", e.Seat, e.Msg)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// spawnError wraps a failure to start the process.
func spawnError(seat string, err error) *Error {
	return &Error{Kind: KindSpawn, Seat: seat, Msg: "failed to spawn process", Err: err}
}

// timeoutError reports that no result arrived within the window.
func timeoutError(seat string, timeout time.Duration) *Error {
	return &Error{
		Kind: KindTimeout,
		Seat: seat,
		Msg:  fmt.Sprintf("timed out after %dms waiting for result", timeout.Milliseconds()),
	}
}

// exitError reports a process ending without a usable result.
func exitError(seat string, code int, signal, stderr string) *Error {
	msg := fmt.Sprintf("process exited with code %d before producing a result", code)
	if signal != "" {
		msg = fmt.Sprintf("process killed by signal %s before producing a result", signal)
	}
	return &Error{
		Kind:     KindExit,
		Seat:     seat,
		Msg:      msg,
		ExitCode: code,
		Signal:   signal,
		Stderr:   stderr,
	}
}

// notRunningError reports a send against a dead seat.
func notRunningError(seat string) *Error {
	return &Error{Kind: KindExit, Seat: seat, Msg: "process not running"}
}

// toolError reports a result the tool itself flagged as failed.
func toolError(seat, msg string) *Error {
	return &Error{Kind: KindTool, Seat: seat, Msg: msg}
}
