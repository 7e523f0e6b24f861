package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const ShrekPath = "/api/shrek"

// SessionHeader lets a client tie its relay calls together in the service's
// audit ledger. It is optional.
const SessionHeader = "X-Swamp-Session"

// Client talks to a running relay service instead of spawning the script
// itself. It honours the same Send contract as Relay, including the lack of
// a timeout: only ctx ends a call.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
}

func (c *Client) Send(ctx context.Context, message string, history []Turn) (Reply, error) {
	if history == nil {
		history = []Turn{}
	}
	body, err := json.Marshal(Request{Message: message, ConversationHistory: history})
	if err != nil {
		return Reply{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+ShrekPath, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Session != "" {
		req.Header.Set(SessionHeader, c.Session)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Reply{}, &Error{Kind: KindTransport, Message: "relay unreachable", Diagnostic: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, &Error{Kind: KindTransport, Message: "read relay response", Diagnostic: err.Error(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return Reply{}, remoteError(resp.StatusCode, raw)
	}
	return ParseReply(raw)
}

func remoteError(status int, raw []byte) *Error {
	var body ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return &Error{
			Kind:       KindRemote,
			Message:    fmt.Sprintf("relay returned %d", status),
			Diagnostic: strings.TrimSpace(string(raw)),
		}
	}
	diag := body.Details
	if diag == "" {
		diag = body.Output
	}
	return &Error{Kind: KindRemote, Message: body.Error, Diagnostic: diag}
}
