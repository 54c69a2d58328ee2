// Topic HTTP handlers.
//
// This file exposes read-only access to the debate topic registry:
//   - GET /topics       (full catalog)
//   - GET /topics/{id}  (one topic)
//
// Steering prompts never leave the server; responses carry only id and title.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nchalk/go-debate-backend/internal/services"
)

// TopicResponse is the public shape of a debate topic.
type TopicResponse struct {
	ID    string `json:"id" example:"climate_action"`
	Title string `json:"title" example:"Climate Action"`
}

// ListTopicsResponse wraps the topic catalog.
type ListTopicsResponse struct {
	Topics []TopicResponse `json:"topics"`
}

// ListTopics godoc
// @ID          listTopics
// @Summary     List debate topics
// @Description Returns every registered debate topic.
// @Tags        Topics
// @Produce     json
//
// @Success     200  {object}  handlers.ListTopicsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /topics [get]
func (h *Handlers) ListTopics(c *gin.Context) {
	topics, err := h.deps.Topics.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list topics")
		return
	}
	out := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, TopicResponse{ID: t.ID, Title: t.Title})
	}
	ok(c, http.StatusOK, ListTopicsResponse{Topics: out})
}

// GetTopic godoc
// @ID          getTopic
// @Summary     Get one debate topic
// @Description Returns a topic by its slug.
// @Tags        Topics
// @Produce     json
//
// @Param       id  path  string  true  "Topic slug"  example(climate_action)
//
// @Success     200  {object}  handlers.TopicResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Topic not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /topics/{id} [get]
func (h *Handlers) GetTopic(c *gin.Context) {
	topic, err := h.deps.Topics.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "topic not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load topic")
		return
	}
	ok(c, http.StatusOK, TopicResponse{ID: topic.ID, Title: topic.Title})
}
