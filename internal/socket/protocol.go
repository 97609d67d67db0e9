package socket

// Message represents a command sent to the running subtasks instance
type Message struct {
	Command string `json:"command"`
	Text    string `json:"text,omitempty"`
	Name    string `json:"name,omitempty"` // Optional section header for add_section

	// ResponseChan is set by the server for synchronous commands; the
	// handler must send exactly one response on it.
	ResponseChan chan *Response `json:"-"`
}

// Response represents the response from the server
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Command types
const (
	CommandAddSection = "add_section"
	CommandList       = "list"
	CommandSilence    = "silence"
)

// synchronous reports whether the client waits for the handler's answer
func synchronous(command string) bool {
	return command == CommandList
}
