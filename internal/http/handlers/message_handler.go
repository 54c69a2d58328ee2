// Message history HTTP handler.
//
// This file exposes the durable chat log:
//   - GET /topics/{id}/messages  (recent messages, chronological ascending)
//
// The endpoint supports conditional responses: a weak ETag derived from the
// log's row count and newest timestamp lets clients poll cheaply with
// If-None-Match.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nchalk/go-debate-backend/internal/domain"
	"github.com/nchalk/go-debate-backend/internal/services"
	"github.com/nchalk/go-debate-backend/internal/utils"
)

// ListMessagesResponse contains the recent messages of one topic.
type ListMessagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// ListMessages godoc
// @ID          listMessages
// @Summary     Recent messages in a topic
// @Description Returns up to `limit` of the newest messages, oldest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Messages
// @Produce     json
//
// @Param       id             path    string  true  "Topic slug"                  example(climate_action)
// @Param       limit          query   int     false "Max messages to return"      minimum(1) maximum(200) default(50)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Topic not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /topics/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	topicID := c.Param("id")

	// The topic must exist; an empty log on a real topic is a 200.
	if _, err := h.deps.Topics.Get(ctx, topicID); err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "topic not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load topic")
		return
	}

	// ETag pre-check (best effort).
	if count, maxTS, err := h.deps.History.Stats(ctx, topicID); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, topicID, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	limit := utils.AtoiDefault(c.Query("limit"), 0) // service applies default/cap
	msgs, err := h.deps.History.Recent(ctx, topicID, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load messages")
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	ok(c, http.StatusOK, ListMessagesResponse{Messages: msgs})
}
