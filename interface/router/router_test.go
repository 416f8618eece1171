package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adventure/biz/entity"
	"adventure/biz/jobservice"
	"adventure/biz/storyservice"
	"adventure/infra/configs"
	"adventure/interface/handler"
	"adventure/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStoryService struct {
	stories map[uint64]*entity.CompleteStory
}

func (f *fakeStoryService) GenerateStory(ctx context.Context, sessionID, theme string) (*entity.Story, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeStoryService) GetCompleteStory(ctx context.Context, storyID uint64) (*entity.CompleteStory, error) {
	if storyID == 0 {
		return nil, storyservice.STORY_ID_NOT_NULL
	}
	story, ok := f.stories[storyID]
	if !ok {
		return nil, storyservice.STORY_NOT_EXIST
	}
	return story, nil
}

type fakeJobService struct {
	jobs map[string]*entity.StoryJob
}

func (f *fakeJobService) CreateStoryJob(ctx context.Context, sessionID, theme string) (*entity.StoryJob, error) {
	if sessionID == "" {
		return nil, storyservice.SESSION_ID_NOT_NULL
	}
	job := &entity.StoryJob{
		JobID:     fmt.Sprintf("job-%d", len(f.jobs)+1),
		SessionID: sessionID,
		Theme:     theme,
		Status:    entity.JobStatusPending,
		CreatedAt: time.Now(),
	}
	f.jobs[job.JobID] = job
	return job, nil
}

func (f *fakeJobService) GetJob(ctx context.Context, sessionID, jobID string) (*entity.StoryJob, error) {
	job, ok := f.jobs[jobID]
	if !ok || job.SessionID != sessionID {
		return nil, jobservice.JOB_NOT_EXIST
	}
	return job, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	LogID   string          `json:"log_id"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeJobService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := &entity.StoryNode{ID: 1, IsRoot: true, Content: "start", Options: []entity.NodeOption{
		{Text: "left", NodeID: 2},
		{Text: "right", NodeID: 3},
	}}
	left := &entity.StoryNode{ID: 2, Content: "win", IsEnding: true, IsWinningEnding: true}
	right := &entity.StoryNode{ID: 3, Content: "lose", IsEnding: true}
	stories := &fakeStoryService{stories: map[uint64]*entity.CompleteStory{
		7: {
			ID:        7,
			Title:     "Cave",
			SessionID: "s",
			RootNode:  root,
			AllNodes:  map[uint64]*entity.StoryNode{1: root, 2: left, 3: right},
		},
	}}
	jobs := &fakeJobService{jobs: map[string]*entity.StoryJob{}}
	handler.InitHandler(stories, jobs)

	conf := &configs.AppConfig{
		Server:  configs.ServerConfig{Mode: gin.TestMode, AllowOrigins: []string{"http://localhost:3000"}},
		Session: configs.SessionConfig{Secret: "test-secret", MaxAge: 3600},
	}
	return NewRouter(conf), jobs
}

func doRequest(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.Equal(t, response.SUCCESS.Code, env.Code)
	assert.NotEmpty(t, env.LogID)
	assert.Equal(t, env.LogID, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id", decode(t, w).LogID)
}

func TestCreateStoryAndPollJob(t *testing.T) {
	r, jobs := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/stories/create", `{"theme":"space"}`)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.Equal(t, response.SUCCESS.Code, env.Code)

	var created struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)
	require.Contains(t, jobs.jobs, created.JobID)
	assert.Equal(t, "space", jobs.jobs[created.JobID].Theme)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// 同一会话可以查到
	w = doRequest(r, http.MethodGet, "/api/jobs/"+created.JobID, "", cookies...)
	env = decode(t, w)
	assert.Equal(t, response.SUCCESS.Code, env.Code)

	// 换一个会话查不到
	w = doRequest(r, http.MethodGet, "/api/jobs/"+created.JobID, "")
	env = decode(t, w)
	assert.Equal(t, response.JOB_NOT_EXIST.Code, env.Code)
}

func TestSessionIsStableAcrossRequests(t *testing.T) {
	r, jobs := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/stories/create", `{"theme":"a"}`)
	cookies := w.Result().Cookies()
	doRequest(r, http.MethodPost, "/api/stories/create", `{"theme":"b"}`, cookies...)

	require.Len(t, jobs.jobs, 2)
	assert.Equal(t, jobs.jobs["job-1"].SessionID, jobs.jobs["job-2"].SessionID)
}

func TestCreateStoryWithoutBody(t *testing.T) {
	r, jobs := newTestRouter(t)
	w := doRequest(r, http.MethodPost, "/api/stories/create", "")
	assert.Equal(t, response.SUCCESS.Code, decode(t, w).Code)
	require.Len(t, jobs.jobs, 1)
	assert.Equal(t, "", jobs.jobs["job-1"].Theme)
}

func TestCreateStoryBadBody(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRequest(r, http.MethodPost, "/api/stories/create", `{"theme":`)
	assert.Equal(t, response.PARAM_NOT_VALID.Code, decode(t, w).Code)
}

func TestGetCompleteStory(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/stories/7/complete", "")
	env := decode(t, w)
	require.Equal(t, response.SUCCESS.Code, env.Code)

	var story struct {
		ID       uint64 `json:"id"`
		Title    string `json:"title"`
		RootNode struct {
			ID      uint64 `json:"id"`
			IsRoot  bool   `json:"is_root"`
			Options []struct {
				Text   string `json:"text"`
				NodeID uint64 `json:"node_id"`
			} `json:"options"`
		} `json:"root_node"`
		AllNodes map[string]struct {
			IsEnding bool              `json:"is_ending"`
			Options  []json.RawMessage `json:"options"`
		} `json:"all_nodes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &story))

	assert.Equal(t, uint64(7), story.ID)
	assert.Equal(t, "Cave", story.Title)
	assert.True(t, story.RootNode.IsRoot)
	require.Len(t, story.RootNode.Options, 2)
	assert.Equal(t, "left", story.RootNode.Options[0].Text)
	assert.Equal(t, uint64(2), story.RootNode.Options[0].NodeID)
	assert.Equal(t, uint64(3), story.RootNode.Options[1].NodeID)

	require.Len(t, story.AllNodes, 3)
	assert.True(t, story.AllNodes["2"].IsEnding)
	assert.NotNil(t, story.AllNodes["2"].Options)
	assert.Empty(t, story.AllNodes["2"].Options)
}

func TestGetCompleteStoryErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		path string
		code int
	}{
		{"/api/stories/abc/complete", response.PARAM_NOT_VALID.Code},
		{"/api/stories/0/complete", response.STORY_ID_NOT_NULL.Code},
		{"/api/stories/99/complete", response.STORY_NOT_EXIST.Code},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, c.path, "")
			assert.Equal(t, c.code, decode(t, w).Code)
		})
	}
}

func TestStoryServiceErrorToMsgCode(t *testing.T) {
	cases := []struct {
		err  error
		want response.MsgCode
	}{
		{nil, response.SUCCESS},
		{storyservice.SESSION_ID_NOT_NULL, response.SESSION_ID_NOT_NULL},
		{fmt.Errorf("load: %w", storyservice.STORY_NOT_EXIST), response.STORY_NOT_EXIST},
		{fmt.Errorf("%w: node 3", storyservice.STORY_GRAPH_BROKEN), response.STORY_GRAPH_BROKEN},
		{&storyservice.GenerationFailedError{Attempts: 3, Err: storyservice.MALFORMED_JSON}, response.STORY_GENERATION_FAILED},
		{&storyservice.MaterializationError{Err: fmt.Errorf("disk full")}, response.STORY_PERSIST_FAILED},
		{jobservice.JOB_ID_NOT_NULL, response.JOB_ID_NOT_NULL},
		{jobservice.JOB_NOT_EXIST, response.JOB_NOT_EXIST},
		{jobservice.QUEUE_UNAVAILABLE, response.QUEUE_UNAVAILABLE},
		{fmt.Errorf("boom"), response.COMMON_FAIL},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, storyServiceErrorToMsgCode(c.err))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
