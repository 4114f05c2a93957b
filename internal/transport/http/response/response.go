package response

import "net/http"

// Resp is the body of every API answer.
type Resp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK wraps data in a success envelope. An empty msg falls back to the
// default text for 200.
func OK(msg string, data any) Resp {
	if msg == "" {
		msg = Message(http.StatusOK)
	}
	return Resp{Success: true, Message: msg, Data: data}
}

// Error builds a failure envelope (custom msg overrides the default for status).
func Error(status int, customMsg string) Resp {
	msg := Message(status)
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Success: false, Message: msg}
}
