package seat

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// Message represents one decoded line of the model CLI's stream-json
// output. Only the fields the supervisor acts on are modeled; Raw holds
// the full line for callers that want more.
type Message struct {
	Type      string       `json:"type"`    // "system", "assistant", "result", ...
	Subtype   string       `json:"subtype"` // "init", "success", ...
	SessionID string       `json:"session_id,omitempty"`
	Result    string       `json:"result,omitempty"`
	IsError   bool         `json:"is_error,omitempty"`
	Errors    []ErrorEntry `json:"errors,omitempty"`
	Usage     *Usage       `json:"usage,omitempty"`

	// Raw is the original line, preserved for event callbacks.
	Raw json.RawMessage `json:"-"`
}

// ErrorEntry is one error description embedded in a result message.
// The CLI emits these either as plain strings or as {message} objects.
type ErrorEntry struct {
	Message string
}

// UnmarshalJSON accepts both the string and the object form.
func (e *ErrorEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Message = s
		return nil
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Message = obj.Message
	return nil
}

// Usage holds the token counters from a result message. The CLI has
// shipped both camelCase and snake_case field names; both are accepted,
// with missing fields defaulting to zero.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u *Usage) UnmarshalJSON(data []byte) error {
	var aux struct {
		InputCamel  int `json:"inputTokens"`
		OutputCamel int `json:"outputTokens"`
		InputSnake  int `json:"input_tokens"`
		OutputSnake int `json:"output_tokens"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.InputTokens = aux.InputCamel
	if u.InputTokens == 0 {
		u.InputTokens = aux.InputSnake
	}
	u.OutputTokens = aux.OutputCamel
	if u.OutputTokens == 0 {
		u.OutputTokens = aux.OutputSnake
	}
	return nil
}

// Total returns input plus output tokens. Safe on a nil receiver.
func (u *Usage) Total() int {
	if u == nil {
		return 0
	}
	return u.InputTokens + u.OutputTokens
}

// parseLine decodes one line of stream-json output. Returns nil for
// blank lines, non-JSON noise, and lines that fail to decode; the CLI
// with --verbose mixes informational text into stdout, so a bad line is
// logged and dropped rather than treated as a protocol error.
func parseLine(line string, log *slog.Logger) *Message {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if !strings.HasPrefix(line, "{") {
		log.Debug("skipping non-JSON output line", "line", truncateForLog(line))
		return nil
	}

	var msg Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		log.Warn("failed to parse stream message", "error", err, "line", truncateForLog(line))
		return nil
	}

	if msg.Type == "" {
		log.Warn("unrecognized JSON message without type", "line", truncateForLog(line))
		return nil
	}

	msg.Raw = json.RawMessage(line)
	return &msg
}

// extractResult is the single choke point where a structurally valid
// but tool-flagged-failed result becomes a caller-visible error. Clean
// results pass through unchanged.
func extractResult(seatName string, msg *Message) (*Message, error) {
	if !msg.IsError {
		return msg, nil
	}

	var parts []string
	for _, e := range msg.Errors {
		if e.Message != "" {
			parts = append(parts, e.Message)
		}
	}
	if len(parts) == 0 {
		return nil, toolError(seatName, "model invocation failed")
	}
	return nil, toolError(seatName, strings.Join(parts, "; "))
}

// truncateForLog truncates long strings for log messages
func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
