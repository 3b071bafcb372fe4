package codex

import "encoding/json"

// rawEnvelope is one line of a rollout file. The payload shape depends on the
// envelope type: session_meta, turn_context, response_item, or event_msg.
type rawEnvelope struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type rawSessionMeta struct {
	ID  string `json:"id"`
	Cwd string `json:"cwd"`
}

type rawTurnContext struct {
	Model string `json:"model"`
}

// rawEvent covers event_msg payloads. Token counters are cumulative for the
// session, not per message.
type rawEvent struct {
	Type         string `json:"type"`
	InputTokens  uint64 `json:"input_tokens"`
	OutputTokens uint64 `json:"output_tokens"`
}

// rawCompacted is the payload of a compacted envelope, which marks the point
// where the preceding conversation was replaced by a summary.
type rawCompacted struct {
	Message string `json:"message"`
}

// rawItem is a response_item payload. Fields beyond Type are populated per
// item kind; loosely typed fields stay raw so one malformed field does not
// reject the whole item.
type rawItem struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	CreatedAt string          `json:"created_at"`
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`

	// tool call items and their outputs
	CallID    string          `json:"call_id"`
	Action    *rawAction      `json:"action"`
	Name      string          `json:"name"`
	Arguments string          `json:"arguments"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output"`

	// reasoning
	Summary []rawPart `json:"summary"`
}

// rawAction holds a shell invocation or web search; the command is an argv
// array or a single string.
type rawAction struct {
	Command json.RawMessage `json:"command"`
	Query   string          `json:"query"`
}

// rawPart is one element of a content or summary array.
type rawPart struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Refusal string `json:"refusal"`
}
