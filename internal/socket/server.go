package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by NewServer when another instance answers
// on the socket path.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Server represents a Unix socket server for accepting external commands
type Server struct {
	socketPath string
	listener   net.Listener
	msgChan    chan Message
	stopChan   chan struct{}
	stopOnce   sync.Once
	logger     *slog.Logger
}

// NewServer listens on socketPath. A leftover socket file from a crashed
// instance is replaced; a live one is reported as ErrAlreadyRunning.
func NewServer(socketPath string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	if conn, err := net.DialTimeout("unix", socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, socketPath)
	}

	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on socket: %w", err)
	}

	logger = logger.With("component", "socket")
	logger.Info("socket server listening", "path", socketPath)

	return &Server{
		socketPath: socketPath,
		listener:   listener,
		msgChan:    make(chan Message, 10), // Buffer up to 10 messages
		stopChan:   make(chan struct{}),
		logger:     logger,
	}, nil
}

// Start begins accepting connections on the socket
func (s *Server) Start() {
	go s.acceptLoop()
}

// acceptLoop continuously accepts new connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("error accepting connection", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// handleConnection processes a single client connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var msg Message
	if err := decoder.Decode(&msg); err != nil {
		if err != io.EOF {
			s.logger.Warn("error decoding message", "error", err)
		}
		encoder.Encode(Response{
			Success: false,
			Message: fmt.Sprintf("Invalid message format: %v", err),
		})
		return
	}

	switch msg.Command {
	case "":
		encoder.Encode(Response{Success: false, Message: "Missing command field"})
		return
	case CommandAddSection, CommandList, CommandSilence:
	default:
		encoder.Encode(Response{Success: false, Message: fmt.Sprintf("Unknown command %q", msg.Command)})
		return
	}

	if synchronous(msg.Command) {
		msg.ResponseChan = make(chan *Response, 1)
	}

	select {
	case s.msgChan <- msg:
		if msg.ResponseChan == nil {
			encoder.Encode(Response{Success: true, Message: "Command queued"})
			return
		}
		select {
		case response := <-msg.ResponseChan:
			encoder.Encode(response)
		case <-time.After(3 * time.Second):
			encoder.Encode(Response{Success: false, Message: "Command timed out"})
		case <-s.stopChan:
			encoder.Encode(Response{Success: false, Message: "Server is shutting down"})
		}
	case <-s.stopChan:
		encoder.Encode(Response{Success: false, Message: "Server is shutting down"})
	}
}

// Messages returns the channel for receiving messages
func (s *Server) Messages() <-chan Message {
	return s.msgChan
}

// SocketPath returns the path to the Unix socket
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Stop stops the server and cleans up resources. It is safe to call more
// than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.listener != nil {
			s.listener.Close()
		}
		if s.socketPath != "" {
			os.Remove(s.socketPath)
		}
		s.logger.Info("socket server stopped")
	})
}
