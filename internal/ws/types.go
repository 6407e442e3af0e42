package ws

const (
	// server - client
	MsgReady = "ready"
	MsgReply = "reply"
	MsgError = "error"
)

// client - server
type ChatPayload struct {
	Message string `json:"message"`
}

// server - client
type ReplyPayload struct {
	Type     string `json:"type"`
	Response string `json:"response"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
