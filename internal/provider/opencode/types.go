package opencode

import "encoding/json"

// rawProject is a storage/project/{id}.json document. The display name is
// derived from the worktree path; there is no name field.
type rawProject struct {
	ID       string `json:"id"`
	Worktree string `json:"worktree"`
}

// rawTime holds epoch-millisecond timestamps.
type rawTime struct {
	Created *uint64 `json:"created"`
	Updated *uint64 `json:"updated"`
}

// rawSession is a storage/session/{project}/{id}.json document.
type rawSession struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Time  *rawTime `json:"time"`
}

// rawMessage is a storage/message/{session}/{id}.json document. The body
// lives in separate part files keyed by the message id.
type rawMessage struct {
	ID       string     `json:"id"`
	Role     string     `json:"role"`
	ParentID string     `json:"parentID"`
	ModelID  string     `json:"modelID"`
	Time     *rawTime   `json:"time"`
	Tokens   *rawTokens `json:"tokens"`
	Cost     *float64   `json:"cost"`
}

// rawTokens covers both the message-level counter pair and the richer
// step-finish shape with cache counters.
type rawTokens struct {
	Input  *uint64 `json:"input"`
	Output *uint64 `json:"output"`
	Cache  *struct {
		Read  *uint64 `json:"read"`
		Write *uint64 `json:"write"`
	} `json:"cache"`
}

// rawPart is a storage/part/{message}/{id}.json document. Which fields are
// populated depends on Type.
type rawPart struct {
	Type string `json:"type"`

	// text / reasoning / compaction
	Text      string          `json:"text"`
	Content   json.RawMessage `json:"content"`
	Reasoning string          `json:"reasoning"`

	// tool
	Tool   string        `json:"tool"`
	CallID string        `json:"callID"`
	ID     string        `json:"id"`
	State  *rawToolState `json:"state"`

	// step-finish
	Tokens *rawTokens `json:"tokens"`
	Cost   *float64   `json:"cost"`

	// patch / file
	Files    []string `json:"files"`
	Filename string   `json:"filename"`
	URL      string   `json:"url"`
}

// rawToolState is the nested state object of a tool part.
type rawToolState struct {
	Status string          `json:"status"`
	Input  map[string]any  `json:"input"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}
