package app

import (
	"bytes"

	"github.com/pstuifzand/subtasks/internal/export"
	"github.com/pstuifzand/subtasks/internal/socket"
)

// handleSocketMessage processes messages received from the Unix socket
func (a *App) handleSocketMessage(msg socket.Message) {
	a.logger.Debug("socket message", "command", msg.Command, "name", msg.Name)

	resp := a.dispatchSocketMessage(msg)
	if msg.ResponseChan != nil {
		msg.ResponseChan <- resp
	}
}

func (a *App) dispatchSocketMessage(msg socket.Message) *socket.Response {
	switch msg.Command {
	case socket.CommandAddSection:
		return a.handleAddSectionCommand(msg)
	case socket.CommandList:
		return a.handleListCommand()
	case socket.CommandSilence:
		a.silence()
		return &socket.Response{Success: true, Message: "Alarm silenced"}
	default:
		a.logger.Warn("unknown socket command", "command", msg.Command)
		return &socket.Response{Success: false, Message: "Unknown command: " + msg.Command}
	}
}

// handleAddSectionCommand adds a committed section without disturbing the
// section being edited
func (a *App) handleAddSectionCommand(msg socket.Message) *socket.Response {
	id, err := a.engine.AddSectionWithText(msg.Name, msg.Text)
	if err != nil {
		a.logger.Error("failed to add section from socket", "error", err)
		return &socket.Response{Success: false, Message: err.Error()}
	}
	a.engine.Notices().Add("Task added")
	a.logger.Info("section added from socket", "section", id)
	return &socket.Response{Success: true, Message: "Task added"}
}

// handleListCommand answers with the committed outline as markdown
func (a *App) handleListCommand() *socket.Response {
	var buf bytes.Buffer
	if err := export.WriteMarkdown(&buf, a.engine.Committed()); err != nil {
		return &socket.Response{Success: false, Message: err.Error()}
	}
	return &socket.Response{Success: true, Message: buf.String()}
}
