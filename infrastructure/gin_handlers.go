// infrastructure/gin_handlers.go
package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/domain"
	"github.com/vitovidale/ai-animator/usecase"
)

type CreationHandlers struct {
	RenderUC     *usecase.RenderAnimationUseCase
	HistoryUC    *usecase.CreationHistoryUseCase
	MaxBodyBytes int64
	Logger       *logrus.Logger
}

func NewCreationHandlers(renderUC *usecase.RenderAnimationUseCase, historyUC *usecase.CreationHistoryUseCase, maxBodyBytes int64, log *logrus.Logger) *CreationHandlers {
	return &CreationHandlers{
		RenderUC:     renderUC,
		HistoryUC:    historyUC,
		MaxBodyBytes: maxBodyBytes,
		Logger:       log,
	}
}

func (h *CreationHandlers) RenderHandler(c *gin.Context) {
	identity := MustIdentity(c)
	if h.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes)
	}

	var req domain.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large."})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code and prompt must be provided."})
		return
	}

	output, err := h.RenderUC.Execute(c.Request.Context(), usecase.RenderAnimationInput{
		UserID: identity.UID,
		Code:   req.Code,
		Prompt: req.Prompt,
	})
	if err != nil {
		c.Error(err)
		h.writeRenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videoUrl": output.VideoURL})
}

func (h *CreationHandlers) writeRenderError(c *gin.Context, err error) {
	var renderErr *domain.RenderError
	var persistErr *domain.PersistenceError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code and prompt must be provided."})
	case errors.As(err, &persistErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Failed to save creation.",
			"message":  persistErr.Error(),
			"videoUrl": persistErr.VideoURL,
		})
	case errors.As(err, &renderErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render video.",
			"message": renderErr.Error(),
			"stdout":  renderErr.Stdout,
			"stderr":  renderErr.Stderr,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render video.",
			"message": "internal error",
		})
	}
}

func (h *CreationHandlers) ListHistoryHandler(c *gin.Context) {
	identity := MustIdentity(c)
	creations, err := h.HistoryUC.List(c.Request.Context(), identity.UID)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history."})
		return
	}
	c.JSON(http.StatusOK, creations)
}

func (h *CreationHandlers) DeleteHistoryItemHandler(c *gin.Context) {
	identity := MustIdentity(c)
	err := h.HistoryUC.Delete(c.Request.Context(), identity.UID, c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted."})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Creation id must be provided."})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete history item."})
	}
}

func (h *CreationHandlers) ClearHistoryHandler(c *gin.Context) {
	identity := MustIdentity(c)
	n, err := h.HistoryUC.Clear(c.Request.Context(), identity.UID)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully cleared all history.", "deleted": n})
}

// HealthHandlers reports liveness of the service and its backing stores.
type HealthHandlers struct {
	Checks  map[string]domain.Pinger
	Timeout time.Duration
}

func (h *HealthHandlers) RootHandler(c *gin.Context) {
	c.String(http.StatusOK, "Hello from the Manim Backend Server!")
}

func (h *HealthHandlers) HealthHandler(c *gin.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	body := gin.H{"status": "UP"}
	code := http.StatusOK
	for name, check := range h.Checks {
		if err := check.Ping(ctx); err != nil {
			body[name] = "error: " + err.Error()
			body["status"] = "DOWN"
			code = http.StatusServiceUnavailable
			continue
		}
		body[name] = "connected"
	}
	c.JSON(code, body)
}
