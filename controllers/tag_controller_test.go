package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/devflow-backend/config"
	"github.com/vnkhanh/devflow-backend/models"
	"github.com/vnkhanh/devflow-backend/services"
	"github.com/vnkhanh/devflow-backend/ws"
)

type recordedEvent struct {
	kind string
	tag  models.Tag
}

type eventRecorder struct {
	events []recordedEvent
}

func (r *eventRecorder) BroadcastTagEvent(kind string, tag models.Tag) {
	r.events = append(r.events, recordedEvent{kind: kind, tag: tag})
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	events *eventRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.Open(config.Settings{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	events := &eventRecorder{}
	tc := NewTagController(services.NewTagService(db), events)

	r := gin.New()
	r.GET("/health", HealthCheck(db, ws.NewHub()))
	r.GET("/api/tags", tc.GetTags)
	r.GET("/api/tags/popular", tc.GetPopularTags)
	r.GET("/api/tags/:id", tc.GetTagDetail)
	r.POST("/api/tags", tc.CreateTag)
	r.PATCH("/api/tags/:id", tc.UpdateTag)
	r.GET("/api/users/:id/top-tags", tc.GetUserTopTags)

	return &testEnv{db: db, router: r, events: events}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedTag(t *testing.T, name string, day int) models.Tag {
	t.Helper()
	tag := models.Tag{
		Name:           name,
		Slug:           name,
		Description:    "about " + name,
		DevelopedBy:    name + " inc",
		CompanyWebsite: "https://" + name + ".dev",
		CreatedAt:      time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.db.Create(&tag).Error)
	return tag
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type tagsResponse struct {
	Tags   []models.Tag `json:"tags"`
	IsNext bool         `json:"isNext"`
}

type tagResponse struct {
	Tag   models.Tag `json:"tag"`
	Error string     `json:"error"`
}

func TestGetTags(t *testing.T) {
	env := newTestEnv(t)
	for i, name := range []string{"kotlin", "java", "scala"} {
		env.seedTag(t, name, i+1)
	}

	w := env.do(t, http.MethodGet, "/api/tags?filter=name&pageSize=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[tagsResponse](t, w)
	require.Len(t, res.Tags, 2)
	assert.Equal(t, "java", res.Tags[0].Name)
	assert.Equal(t, "kotlin", res.Tags[1].Name)
	assert.True(t, res.IsNext)

	w = env.do(t, http.MethodGet, "/api/tags?filter=recent&q=A&page=abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[tagsResponse](t, w)
	require.Len(t, res.Tags, 2)
	assert.Equal(t, "scala", res.Tags[0].Name)
	assert.Equal(t, "java", res.Tags[1].Name)
	assert.False(t, res.IsNext)

	w = env.do(t, http.MethodGet, "/api/tags?filter=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPopularAndUserTopTags(t *testing.T) {
	env := newTestEnv(t)
	java := env.seedTag(t, "java", 1)
	env.seedTag(t, "scala", 2)

	user := models.User{ClerkID: "user_42", Name: "Duke", Username: "duke"}
	require.NoError(t, env.db.Create(&user).Error)
	require.NoError(t, env.db.Create(&models.Question{Title: "Streams", AuthorID: user.ID, Tags: []models.Tag{java}}).Error)

	w := env.do(t, http.MethodGet, "/api/tags/popular", nil)
	require.Equal(t, http.StatusOK, w.Code)
	popular := decode[tagsResponse](t, w)
	require.Len(t, popular.Tags, 2)
	assert.Equal(t, "java", popular.Tags[0].Name)
	assert.EqualValues(t, 1, popular.Tags[0].QuestionCount)

	w = env.do(t, http.MethodGet, "/api/users/user_42/top-tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[tagsResponse](t, w)
	require.Len(t, top.Tags, 1)
	assert.Equal(t, "java", top.Tags[0].Name)

	w = env.do(t, http.MethodGet, "/api/users/user_missing/top-tags", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTagDetail(t *testing.T) {
	env := newTestEnv(t)
	tag := env.seedTag(t, "java", 1)

	w := env.do(t, http.MethodGet, "/api/tags/"+tag.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "java", detail["tagName"])
	assert.Equal(t, "java inc", detail["companyName"])
	assert.Equal(t, "https://java.dev", detail["companyWebsite"])
	assert.Equal(t, []any{}, detail["questions"])
	assert.Equal(t, false, detail["isNext"])

	w = env.do(t, http.MethodGet, "/api/tags/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTag(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{
		"name":           "Civil Engineering",
		"description":    "d",
		"developedBy":    "Acme",
		"companyWebsite": "https://acme.com",
	}

	w := env.do(t, http.MethodPost, "/api/tags", body)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[tagResponse](t, w)
	assert.Equal(t, "Civil Engineering", created.Tag.Name)
	require.Len(t, env.events.events, 1)
	assert.Equal(t, ws.EventTagCreated, env.events.events[0].kind)
	assert.Equal(t, created.Tag.ID, env.events.events[0].tag.ID)

	w = env.do(t, http.MethodPost, "/api/tags", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	body["name"] = "Basket Weaving"
	w = env.do(t, http.MethodPost, "/api/tags", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[tagResponse](t, w).Error, "not allowed")

	w = env.do(t, http.MethodPost, "/api/tags", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.events.events, 1)
}

func TestUpdateTag(t *testing.T) {
	env := newTestEnv(t)
	tag := env.seedTag(t, "java", 1)

	w := env.do(t, http.MethodPatch, "/api/tags/"+tag.ID.String(), map[string]any{
		"description":    "  ",
		"developedBy":    "Oracle",
		"companyWebsite": 42,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[tagResponse](t, w)
	assert.Equal(t, "about java", updated.Tag.Description)
	assert.Equal(t, "Oracle", updated.Tag.DevelopedBy)
	assert.Equal(t, "https://java.dev", updated.Tag.CompanyWebsite)
	require.Len(t, env.events.events, 1)
	assert.Equal(t, ws.EventTagUpdated, env.events.events[0].kind)

	w = env.do(t, http.MethodPatch, "/api/tags/"+uuid.NewString(), map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPatch, "/api/tags/"+tag.ID.String(), []string{"not", "an", "object"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
