package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/devflow-backend/models"
	"github.com/vnkhanh/devflow-backend/services"
	"github.com/vnkhanh/devflow-backend/ws"
)

// TagEvents nhận thông báo sau khi ghi thành công (ws.Hub)
type TagEvents interface {
	BroadcastTagEvent(kind string, tag models.Tag)
}

type TagController struct {
	Service *services.TagService
	Events  TagEvents
}

func NewTagController(svc *services.TagService, events TagEvents) *TagController {
	return &TagController{Service: svc, Events: events}
}

// GET /api/tags?q=&filter=&page=&pageSize=
func (tc *TagController) GetTags(c *gin.Context) {
	result, err := tc.Service.ListTags(c.Request.Context(), services.ListTagsParams{
		SearchQuery: c.Query("q"),
		Filter:      services.TagFilter(strings.ToLower(strings.TrimSpace(c.Query("filter")))),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "pageSize", 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/tags/popular?limit=
func (tc *TagController) GetPopularTags(c *gin.Context) {
	tags, err := tc.Service.PopularTags(c.Request.Context(), queryInt(c, "limit", services.DefaultPopularTagsLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// GET /api/users/:id/top-tags?limit=
func (tc *TagController) GetUserTopTags(c *gin.Context) {
	tags, err := tc.Service.TopTagsForUser(c.Request.Context(), c.Param("id"), queryInt(c, "limit", services.DefaultUserTopTagsLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// GET /api/tags/:id?q=&page=&pageSize=
func (tc *TagController) GetTagDetail(c *gin.Context) {
	detail, err := tc.Service.TagDetail(c.Request.Context(), services.TagDetailParams{
		TagID:       c.Param("id"),
		SearchQuery: c.Query("q"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "pageSize", 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// POST /api/tags
func (tc *TagController) CreateTag(c *gin.Context) {
	var input services.CreateTagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tag, err := tc.Service.CreateTag(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	if tc.Events != nil {
		tc.Events.BroadcastTagEvent(ws.EventTagCreated, tag)
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// PATCH /api/tags/:id
// Body là JSON object; trường không phải chuỗi bị bỏ qua như trường vắng mặt
func (tc *TagController) UpdateTag(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tag, err := tc.Service.UpdateTag(c.Request.Context(), services.UpdateTagInput{
		ID:             c.Param("id"),
		Name:           stringField(body, "name"),
		Description:    stringField(body, "description"),
		DevelopedBy:    stringField(body, "developedBy"),
		CompanyWebsite: stringField(body, "companyWebsite"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if tc.Events != nil {
		tc.Events.BroadcastTagEvent(ws.EventTagUpdated, tag)
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

func stringField(body map[string]any, key string) *string {
	if s, ok := body[key].(string); ok {
		return &s
	}
	return nil
}

// queryInt: giá trị không parse được thì dùng mặc định
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, services.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrDuplicate):
		status, msg = http.StatusConflict, err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}
