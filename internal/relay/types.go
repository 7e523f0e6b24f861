package relay

import (
	"encoding/json"
	"fmt"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one transcript entry in the wire shape the script expects.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the script's JSON document. Raw holds the bytes exactly as the
// script printed them (trimmed) so they can be relayed untouched.
type Reply struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type Kind string

const (
	// KindLaunch: the process could not be started.
	KindLaunch Kind = "launch"
	// KindExit: the process ran and exited non-zero.
	KindExit Kind = "exit"
	// KindParse: exit zero, but stdout was not a JSON object.
	KindParse Kind = "parse"
	// KindRemote: a relay reached over HTTP reported a failure.
	KindRemote Kind = "remote"
	// KindTransport: the HTTP relay could not be reached.
	KindTransport Kind = "transport"
)

type Error struct {
	Kind       Kind
	Message    string
	Diagnostic string
	ExitCode   int
	Err        error
}

func (e *Error) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Diagnostic)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Request is the HTTP body of POST /api/shrek.
type Request struct {
	Message             string `json:"message"`
	ConversationHistory []Turn `json:"conversationHistory"`
}

// ErrorBody is the HTTP body of a failed relay call.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Output  string `json:"output,omitempty"`
}
