package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/webNext25/zoom-smart-dialer/internal/recordings"
)

// ListRecordings pages the caller's call history. Query params: limit,
// cursor, search, sentiment.
func (h Handlers) ListRecordings(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, err := h.Recordings.List(c.Request.Context(), recordings.ListQuery{
		UserID:    userID,
		Limit:     limit,
		Cursor:    c.Query("cursor"),
		Search:    c.Query("search"),
		Sentiment: recordings.Sentiment(c.Query("sentiment")),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetRecording returns one recording owned by the caller.
func (h Handlers) GetRecording(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	rec, err := h.Recordings.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CreateRecording stores a recording supplied by the client, for calls placed
// outside the managed bridge.
func (h Handlers) CreateRecording(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	var req recordings.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec, err := h.Recordings.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Analytics returns the caller's aggregated call statistics.
func (h Handlers) Analytics(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	sum, err := h.Recordings.Summarize(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
