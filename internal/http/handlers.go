package http

import (
	"net/http"

	"github.com/asc2563/regression-thing/internal/infrastructure/monitoring"
	"github.com/asc2563/regression-thing/internal/ipc"
	"github.com/asc2563/regression-thing/internal/providers/terminal"
	"github.com/asc2563/regression-thing/internal/shared/types"
	"github.com/gin-gonic/gin"
)

const version = "0.1.0"

// PathRequest names a single file or directory
type PathRequest struct {
	Path string `json:"path"`
}

// InputRequest carries one line of shell input
type InputRequest struct {
	Input string `json:"input"`
}

// Handlers contains all HTTP handlers
type Handlers struct {
	files   ipc.Files
	shell   ipc.Shell
	metrics *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(files ipc.Files, shell ipc.Shell, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		files:   files,
		shell:   shell,
		metrics: metrics,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "host bridge",
		"version": version,
	})
}

// Health reports the shell state and surface listeners
func (h *Handlers) Health(c *gin.Context) {
	info := h.shell.Status()
	listeners := h.shell.Listeners()

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int64(h.metrics.Uptime().Seconds()),
		"shell": gin.H{
			"state":      info.State,
			"generation": info.Generation,
			"pty":        info.PTY,
		},
		"listeners": gin.H{
			string(terminal.KindOutput): listeners.Count(terminal.KindOutput),
			string(terminal.KindError):  listeners.Count(terminal.KindError),
			string(terminal.KindExit):   listeners.Count(terminal.KindExit),
		},
	})
}

// WriteFile creates or overwrites a file
func (h *Handlers) WriteFile(c *gin.Context) {
	var req types.WriteRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.files.Write(c.Request.Context(), req))
}

// ReadFile returns a file's content
func (h *Handlers) ReadFile(c *gin.Context) {
	var req PathRequest
	if !bind(c, &req) {
		return
	}

	content, err := h.files.Read(c.Request.Context(), req.Path)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OK(content))
}

// DeleteFile removes a file
func (h *Handlers) DeleteFile(c *gin.Context) {
	var req PathRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.files.Delete(c.Request.Context(), req.Path))
}

// RenameFile moves a file without overwriting the destination
func (h *Handlers) RenameFile(c *gin.Context) {
	var req types.RenameRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.files.Rename(c.Request.Context(), req))
}

// ListFiles describes the children of a directory
func (h *Handlers) ListFiles(c *gin.Context) {
	var req PathRequest
	if !bind(c, &req) {
		return
	}

	files, err := h.files.List(c.Request.Context(), req.Path)
	if err != nil {
		res := types.ListFail(err)
		c.JSON(statusFor(res.Code), res)
		return
	}
	c.JSON(http.StatusOK, types.ListOK(files))
}

// TerminalInput queues a line for the shell. Output is only available on
// the message channel.
func (h *Handlers) TerminalInput(c *gin.Context) {
	var req InputRequest
	if !bind(c, &req) {
		return
	}

	if err := h.shell.Submit(req.Input); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, types.OK(nil))
}

// TerminalStatus returns the shell session snapshot
func (h *Handlers) TerminalStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.shell.Status())
}

// TerminalResize changes the terminal size
func (h *Handlers) TerminalResize(c *gin.Context) {
	var req ipc.ResizeRequest
	if !bind(c, &req) {
		return
	}
	respond(c, h.shell.Resize(req.Cols, req.Rows))
}
