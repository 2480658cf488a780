package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watch-catalog/internal/repository"
	"watch-catalog/internal/service"
)

type WatchHandler struct {
	logger    *zap.Logger
	watchServ *service.WatchService
}

func NewWatchHandler(logger *zap.Logger, watchServ *service.WatchService) *WatchHandler {
	return &WatchHandler{logger: logger, watchServ: watchServ}
}

type commentRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// ListWatches maneja GET /watches con filtros estilo json-server.
func (h *WatchHandler) ListWatches(c *gin.Context) {
	filter := repository.WatchFilter{
		WatchNameLike:        strings.TrimSpace(c.Query("watchName_like")),
		WatchDescriptionLike: strings.TrimSpace(c.Query("watchDescription_like")),
		BrandID:              strings.TrimSpace(c.Query("brand")),
		Sort:                 sortFromQuery(c),
	}
	watches, total, err := h.watchServ.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "fetch watches", err)
		return
	}
	setTotalCount(c, total)
	c.JSON(http.StatusOK, watches)
}

func (h *WatchHandler) GetWatch(c *gin.Context) {
	watch, err := h.watchServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "fetch watch", err)
		return
	}
	c.JSON(http.StatusOK, watch)
}

func (h *WatchHandler) CreateWatch(c *gin.Context) {
	var req struct {
		WatchName        string  `json:"watchName"`
		Image            string  `json:"image"`
		Price            float64 `json:"price"`
		Automatic        bool    `json:"automatic"`
		WatchDescription string  `json:"watchDescription"`
		Brand            string  `json:"brand"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create watch", err)
		return
	}
	watch, err := h.watchServ.Create(c.Request.Context(), service.CreateWatchInput{
		WatchName:        req.WatchName,
		Image:            req.Image,
		Price:            req.Price,
		Automatic:        req.Automatic,
		WatchDescription: req.WatchDescription,
		BrandID:          req.Brand,
	})
	if err != nil {
		respondError(c, h.logger, "create watch", err)
		return
	}
	c.JSON(http.StatusCreated, watch)
}

func (h *WatchHandler) UpdateWatch(c *gin.Context) {
	var patch repository.WatchPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update watch", err)
		return
	}
	watch, err := h.watchServ.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, "update watch", err)
		return
	}
	c.JSON(http.StatusOK, watch)
}

func (h *WatchHandler) DeleteWatch(c *gin.Context) {
	watch, err := h.watchServ.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "delete watch", err)
		return
	}
	c.JSON(http.StatusOK, watch)
}

// AddComment maneja POST /watches/:id/comments.
func (h *WatchHandler) AddComment(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "add comment", err)
		return
	}
	watch, err := h.watchServ.AddComment(c.Request.Context(), c.Param("id"), identity, service.CommentInput{
		Rating:  req.Rating,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, h.logger, "add comment", err)
		return
	}
	c.JSON(http.StatusCreated, watch)
}

func (h *WatchHandler) UpdateComment(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update comment", err)
		return
	}
	watch, err := h.watchServ.UpdateComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), identity.ID, service.CommentInput{
		Rating:  req.Rating,
		Content: req.Content,
	})
	if errors.Is(err, service.ErrNotCommentAuthor) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only update your own comments"})
		return
	}
	if err != nil {
		respondError(c, h.logger, "update comment", err)
		return
	}
	c.JSON(http.StatusOK, watch)
}

func (h *WatchHandler) DeleteComment(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}
	watch, err := h.watchServ.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), identity.ID)
	if errors.Is(err, service.ErrNotCommentAuthor) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own comments"})
		return
	}
	if err != nil {
		respondError(c, h.logger, "delete comment", err)
		return
	}
	c.JSON(http.StatusOK, watch)
}
