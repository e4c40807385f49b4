package seat

import (
	"strconv"
	"strings"
)

// DefaultCommand is the model CLI binary invoked when Flags.Command is unset.
const DefaultCommand = "claude"

// DefaultThinkingTokens is the thinking-token budget applied when
// Flags.ThinkingTokens is unset.
const DefaultThinkingTokens = 4096

// defaultPermissionMode is the non-interactive permission mode used when
// Flags.PermissionMode is unset. No terminal is attached to the process,
// so an interactive mode would hang forever on its first approval prompt.
const defaultPermissionMode = "bypassPermissions"

// Flags holds the per-seat invocation configuration for the model CLI.
// The zero value is usable: it invokes DefaultCommand with no model
// selection, no tools restriction, and the default permission mode.
type Flags struct {
	// Command is the CLI binary to invoke. Defaults to DefaultCommand.
	Command string

	// Model selects the model identifier passed to the CLI.
	Model string

	// SystemPromptFile, SystemPrompt, and AppendSystemPrompt are the
	// three system-prompt sources. They are not mutually exclusive;
	// all that are set get passed.
	SystemPromptFile   string
	SystemPrompt       string
	AppendSystemPrompt string

	// Tools is the tool-enablement value. A nil pointer omits the flag;
	// a pointer to the empty string explicitly disables all tools.
	Tools *string

	// AllowedTools is a repeatable allow-list of tool names.
	AllowedTools []string

	// PermissionMode defaults to defaultPermissionMode.
	PermissionMode string

	// MaxTurns caps the number of agent turns per invocation. Zero
	// omits the flag.
	MaxTurns int

	// ThinkingTokens is the thinking-token budget. Zero applies
	// DefaultThinkingTokens.
	ThinkingTokens int

	// BaseURL overrides the model endpoint when set.
	BaseURL string

	// APIKey overrides the credential when set. Any OAuth token in the
	// inherited environment is removed so authentication is unambiguous.
	APIKey string
}

// command returns the CLI binary to invoke.
func (f Flags) command() string {
	if f.Command != "" {
		return f.Command
	}
	return DefaultCommand
}

// merged returns a copy of f with any set fields of o layered on top.
// A nil o returns f unchanged.
func (f Flags) merged(o *Flags) Flags {
	if o == nil {
		return f
	}
	if o.Command != "" {
		f.Command = o.Command
	}
	if o.Model != "" {
		f.Model = o.Model
	}
	if o.SystemPromptFile != "" {
		f.SystemPromptFile = o.SystemPromptFile
	}
	if o.SystemPrompt != "" {
		f.SystemPrompt = o.SystemPrompt
	}
	if o.AppendSystemPrompt != "" {
		f.AppendSystemPrompt = o.AppendSystemPrompt
	}
	if o.Tools != nil {
		f.Tools = o.Tools
	}
	if len(o.AllowedTools) > 0 {
		f.AllowedTools = o.AllowedTools
	}
	if o.PermissionMode != "" {
		f.PermissionMode = o.PermissionMode
	}
	if o.MaxTurns != 0 {
		f.MaxTurns = o.MaxTurns
	}
	if o.ThinkingTokens != 0 {
		f.ThinkingTokens = o.ThinkingTokens
	}
	if o.BaseURL != "" {
		f.BaseURL = o.BaseURL
	}
	if o.APIKey != "" {
		f.APIKey = o.APIKey
	}
	return f
}

// buildArgs builds the command line arguments for the model CLI.
// Both modes request line-delimited tagged output; persistent mode
// additionally requests the same framing on input.
func buildArgs(f Flags, persistent bool) []string {
	args := []string{
		"--print",
		"--output-format", "stream-json",
		"--verbose",
	}
	if persistent {
		args = append(args, "--input-format", "stream-json")
	}

	if f.Model != "" {
		args = append(args, "--model", f.Model)
	}
	if f.SystemPromptFile != "" {
		args = append(args, "--system-prompt-file", f.SystemPromptFile)
	}
	if f.SystemPrompt != "" {
		args = append(args, "--system-prompt", f.SystemPrompt)
	}
	if f.AppendSystemPrompt != "" {
		args = append(args, "--append-system-prompt", f.AppendSystemPrompt)
	}
	if f.Tools != nil {
		args = append(args, "--tools", *f.Tools)
	}
	for _, tool := range f.AllowedTools {
		args = append(args, "--allowedTools", tool)
	}

	mode := f.PermissionMode
	if mode == "" {
		mode = defaultPermissionMode
	}
	// The companion flag suppresses interactive approval prompts. Without
	// it the CLI blocks forever waiting on a terminal that isn't there.
	args = append(args, "--permission-mode", mode, "--dangerously-skip-permissions")

	// Session continuity is managed here, not by the CLI's own store.
	args = append(args, "--no-session-persistence")

	if f.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(f.MaxTurns))
	}

	return args
}

// buildEnv layers the seat's environment overrides onto base (typically
// os.Environ()) and returns the result. When a credential override is
// supplied, CLAUDE_CODE_OAUTH_TOKEN is stripped so the CLI can't pick
// a conflicting auth path.
func buildEnv(f Flags, base []string) []string {
	env := make([]string, 0, len(base)+3)
	for _, kv := range base {
		if strings.HasPrefix(kv, "MAX_THINKING_TOKENS=") {
			continue
		}
		if f.BaseURL != "" && strings.HasPrefix(kv, "ANTHROPIC_BASE_URL=") {
			continue
		}
		if f.APIKey != "" {
			if strings.HasPrefix(kv, "ANTHROPIC_API_KEY=") || strings.HasPrefix(kv, "CLAUDE_CODE_OAUTH_TOKEN=") {
				continue
			}
		}
		env = append(env, kv)
	}

	thinking := f.ThinkingTokens
	if thinking <= 0 {
		thinking = DefaultThinkingTokens
	}
	env = append(env, "MAX_THINKING_TOKENS="+strconv.Itoa(thinking))

	if f.BaseURL != "" {
		env = append(env, "ANTHROPIC_BASE_URL="+f.BaseURL)
	}
	if f.APIKey != "" {
		env = append(env, "ANTHROPIC_API_KEY="+f.APIKey)
	}

	return env
}
