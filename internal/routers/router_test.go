package routers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/haierkeys/git-light-sync/internal/app"
	"github.com/haierkeys/git-light-sync/internal/runner"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// blockingRunner 可选地阻塞在第一条命令上，用于模拟运行中的同步
type blockingRunner struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]string
	block   chan struct{}
	started chan struct{}
}

func (b *blockingRunner) Run(_ context.Context, command string, _ string) runner.Outcome {
	b.mu.Lock()
	b.calls = append(b.calls, command)
	first := len(b.calls) == 1
	b.mu.Unlock()
	if first && b.block != nil {
		close(b.started)
		<-b.block
	}
	if e, ok := b.fail[command]; ok {
		return runner.Outcome{Command: command, Stderr: e, Kind: runner.KindExit, ExitCode: 1}
	}
	return runner.Outcome{Command: command, Success: true}
}

type dirtyTree struct{}

func (dirtyTree) IsDirty(context.Context, string) (bool, error) { return true, nil }

func newTestApp(t *testing.T, r runner.Runner) *app.App {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	body := "sync:\n  interval: 0\n  working-dir: " + t.TempDir() + "\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	cfg, _, err := app.LoadConfig(p)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), app.WithRunner(r), app.WithDirtyChecker(dirtyTree{}))
	require.NoError(t, err)
	return a
}

type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestSync_Success(t *testing.T) {
	r := &blockingRunner{}
	h := NewPrivateRouter(newTestApp(t, r))

	w, env := do(t, h, http.MethodPost, "/api/sync")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)
	assert.Equal(t, 2, env.Code)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "[GitLight] Sync finished successfully.", data["message"])
	assert.Equal(t, float64(4), data["stepsCompleted"])
	assert.Len(t, r.calls, 4)
}

func TestSync_PushRejected(t *testing.T) {
	r := &blockingRunner{fail: map[string]string{"git push": "rejected"}}
	h := NewPrivateRouter(newTestApp(t, r))

	w, env := do(t, h, http.MethodPost, "/api/sync")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Status)
	assert.Equal(t, 601, env.Code)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "git push", data["failingCommand"])
	assert.Equal(t, "rejected", data["stderr"])
}

func TestSync_InProgress(t *testing.T) {
	r := &blockingRunner{block: make(chan struct{}), started: make(chan struct{})}
	a := newTestApp(t, r)
	h := NewPrivateRouter(a)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = a.TriggerNow(context.Background())
	}()
	<-r.started

	w, env := do(t, h, http.MethodPost, "/api/sync")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 602, env.Code)

	_, env = do(t, h, http.MethodGet, "/api/status")
	var st app.Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "running", st.State)

	close(r.block)
	<-done
}

func TestSync_AfterShutdown(t *testing.T) {
	a := newTestApp(t, &blockingRunner{})
	h := NewPrivateRouter(a)
	require.NoError(t, a.Shutdown(context.Background()))

	w, env := do(t, h, http.MethodPost, "/api/sync")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 603, env.Code)
}

func TestStatus_ShowsNotices(t *testing.T) {
	a := newTestApp(t, &blockingRunner{fail: map[string]string{"git pull": "conflict"}})
	h := NewPrivateRouter(a)

	do(t, h, http.MethodPost, "/api/sync")
	w, env := do(t, h, http.MethodGet, "/api/status")

	assert.Equal(t, http.StatusOK, w.Code)
	var st app.Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "idle", st.State)
	assert.Equal(t, 0, st.Interval)
	require.Len(t, st.Notices, 1)
	assert.Equal(t, "[GitLight] Sync failed: Command 'git pull' failed.", st.Notices[0].Message)
	assert.Contains(t, st.Notices[0].Detail, "conflict")
	assert.NotEmpty(t, st.Lines)
}

func TestMetricsAndNotFound(t *testing.T) {
	h := NewPrivateRouter(newTestApp(t, &blockingRunner{}))
	do(t, h, http.MethodPost, "/api/sync")

	w, _ := do(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "git_light_sync_runs_total")

	w, env := do(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, env.Code)
}

func TestVersionAndHealth(t *testing.T) {
	h := NewPrivateRouter(newTestApp(t, &blockingRunner{}))

	_, env := do(t, h, http.MethodGet, "/api/version")
	var v map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, app.Version, v["version"])

	w, env := do(t, h, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)
}
