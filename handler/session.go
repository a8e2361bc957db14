package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Tharun0024/gen-ai-25/config"
	"github.com/Tharun0024/gen-ai-25/model"
	"github.com/Tharun0024/gen-ai-25/pkg/logger"
	"github.com/Tharun0024/gen-ai-25/service"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed on top of the document size limit
// for multipart boundaries and headers.
const multipartOverhead = 1 << 20

type SessionHandler struct {
	store        *service.WorkspaceStore
	maxBodyBytes int64
}

func NewSessionHandler(store *service.WorkspaceStore, limits config.UploadConfig) *SessionHandler {
	h := &SessionHandler{store: store}
	if limits.MaxBytes > 0 {
		h.maxBodyBytes = limits.MaxBytes + multipartOverhead
	}
	return h
}

// Register mounts the session routes on r.
func (h *SessionHandler) Register(r gin.IRouter) {
	sessions := r.Group("/sessions")
	sessions.POST("", h.Create)
	sessions.GET("/:id", h.Get)
	sessions.GET("/:id/messages", h.Messages)
	sessions.POST("/:id/document", h.Upload)
	sessions.POST("/:id/questions", h.Ask)
	sessions.DELETE("/:id", h.Delete)
}

type sessionView struct {
	ID       string              `json:"id"`
	Loading  bool                `json:"loading"`
	Analysis *model.AnalysisData `json:"analysis"`
	Insights *model.Insights     `json:"insights,omitempty"`
	Messages int                 `json:"message_count"`
}

func viewOf(ws *service.Workspace) sessionView {
	snap := ws.Session.Snapshot()
	view := sessionView{
		ID:       ws.ID,
		Loading:  snap.Loading,
		Analysis: snap.Analysis,
		Messages: ws.Messages.Len(),
	}
	if snap.Analysis != nil {
		insights := service.Derive(snap.Analysis)
		view.Insights = &insights
	}
	return view
}

// Create opens a new session seeded with the greeting message.
func (h *SessionHandler) Create(c *gin.Context) {
	ws := h.store.Create()
	logger.Info(logger.WithSession(c.Request.Context(), ws.ID), "session created")

	c.JSON(http.StatusCreated, gin.H{
		"id":       ws.ID,
		"messages": ws.Messages.All(),
	})
}

// Get returns the analysis state and derived insights of a session
func (h *SessionHandler) Get(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(ws))
}

// Messages returns the conversation in order. With ?after=n only the
// messages following the first n are returned, so a polling client can pass
// the count it already holds.
func (h *SessionHandler) Messages(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	after := 0
	if raw := c.Query("after"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "after must be a non-negative integer"})
			return
		}
		after = n
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": ws.Messages.Since(after),
		"total":    ws.Messages.Len(),
	})
}

// Upload accepts a document and starts its analysis in the background.
func (h *SessionHandler) Upload(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	if h.maxBodyBytes > 0 {
		if c.Request.ContentLength > h.maxBodyBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, service.ErrDocumentTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, service.ErrDocumentTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	doc := model.Document{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if _, err := ws.Uploads.Submit(c.Request.Context(), doc); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":       ws.ID,
		"filename": doc.Name,
		"loading":  ws.Session.Loading(),
		"messages": ws.Messages.All(),
	})
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask records a question and waits for its answer.
func (h *SessionHandler) Ask(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	appended := ws.Chat.SendQuestion(c.Request.Context(), req.Question)
	c.JSON(http.StatusOK, gin.H{"messages": appended})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// Health reports liveness and the number of open sessions.
func (h *SessionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"sessions":  h.store.Count(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *SessionHandler) workspace(c *gin.Context) (*service.Workspace, bool) {
	ws, err := h.store.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return nil, false
	}
	return ws, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrWorkspaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrEmptyDocument), errors.Is(err, service.ErrUnsupportedDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, status int, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
