package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watch-catalog/internal/repository"
	"watch-catalog/internal/service"
)

type MemberHandler struct {
	logger     *zap.Logger
	memberServ *service.MemberService
}

func NewMemberHandler(logger *zap.Logger, memberServ *service.MemberService) *MemberHandler {
	return &MemberHandler{logger: logger, memberServ: memberServ}
}

// ListMembers maneja GET /members (solo admin).
func (h *MemberHandler) ListMembers(c *gin.Context) {
	filter := repository.MemberFilter{
		MembernameLike: strings.TrimSpace(c.Query("membername_like")),
		EmailLike:      strings.TrimSpace(c.Query("email")),
		ID:             strings.TrimSpace(c.Query("_id")),
		Sort:           sortFromQuery(c),
	}
	if raw := strings.TrimSpace(c.Query("YOB")); raw != "" {
		yob, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, h.logger, "list members", err)
			return
		}
		filter.YOB = &yob
	}

	members, total, err := h.memberServ.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "fetch members", err)
		return
	}
	setTotalCount(c, total)
	c.JSON(http.StatusOK, members)
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	member, err := h.memberServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "fetch member", err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) UpdateMember(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}
	var patch service.MemberPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update member", err)
		return
	}
	member, err := h.memberServ.Update(c.Request.Context(), identity.ID, c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, "update member", err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) DeleteMember(c *gin.Context) {
	member, err := h.memberServ.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "delete member", err)
		return
	}
	c.JSON(http.StatusOK, member)
}
