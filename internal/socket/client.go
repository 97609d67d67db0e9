package socket

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"
)

// Client represents a Unix socket client for sending commands
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new client for the socket at socketPath. It fails when
// no socket file exists; a stale file is only detected on Send.
func NewClient(socketPath string) (*Client, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, fmt.Errorf("socket not found: %w", err)
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}, nil
}

// Send sends a message to the server and returns the response
func (c *Client) Send(msg Message) (*Response, error) {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	var response Response
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to receive response: %w", err)
	}

	return &response, nil
}

// SendAddSection asks the running instance to prepend a new section. An
// empty name adds a singular task holding text.
func (c *Client) SendAddSection(name, text string) (*Response, error) {
	return c.Send(Message{
		Command: CommandAddSection,
		Name:    name,
		Text:    text,
	})
}

// SendList asks the running instance for its current checklist
func (c *Client) SendList() (*Response, error) {
	return c.Send(Message{Command: CommandList})
}

// SendSilence stops a ringing alarm
func (c *Client) SendSilence() (*Response, error) {
	return c.Send(Message{Command: CommandSilence})
}
