package router_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/familos/backend/internal/budget"
	"github.com/familos/backend/internal/cache"
	v1 "github.com/familos/backend/internal/controllers/v1"
	"github.com/familos/backend/internal/ledger"
	"github.com/familos/backend/internal/period"
	"github.com/familos/backend/internal/remote/memory"
	"github.com/familos/backend/internal/router"
	"github.com/familos/backend/internal/sync"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := cache.New()
	store := memory.NewStore()

	l, err := ledger.New("fam-castillo", c, store.Contributions(), nil)
	require.NoError(t, err)

	periods, err := period.NewManager("fam-castillo", "", c, store.Periods(), nil)
	require.NoError(t, err)

	reconciler, err := sync.NewReconciler("fam-castillo", c, store)
	require.NoError(t, err)

	syncer, err := sync.NewSyncer("fam-castillo", c, store, zerolog.Nop())
	require.NoError(t, err)

	r, err := router.New()
	require.NoError(t, err)

	controller := v1.NewController(c, l, ledger.NewEngine(l, store.Contributions()), periods, budget.NewAnalyzer(c, nil), reconciler, syncer)
	router.AttachRoutes(&r.RouterGroup, controller, store)

	return r
}

func TestGetRoot(t *testing.T) {
	r := testEngine(t)

	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "/v1")
}

func TestGetVersion(t *testing.T) {
	r := testEngine(t)

	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(http.MethodGet, "/version", nil)
	r.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "version")
}

func TestOptions(t *testing.T) {
	r := testEngine(t)

	for _, path := range []string{"/", "/version"} {
		recorder := httptest.NewRecorder()
		request, _ := http.NewRequest(http.MethodOptions, path, nil)
		r.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code, path)
		assert.Equal(t, "OPTIONS, GET", recorder.Header().Get("allow"), path)
	}
}

func TestMetricsRoute(t *testing.T) {
	r := testEngine(t)

	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestPprofOn(t *testing.T) {
	os.Setenv("ENABLE_PPROF", "true")
	defer os.Unsetenv("ENABLE_PPROF")

	r := testEngine(t)

	var routes []string
	for _, route := range r.Routes() {
		routes = append(routes, route.Path)
	}
	assert.Contains(t, routes, "/debug/pprof/")
}

func TestPprofOff(t *testing.T) {
	r := testEngine(t)

	for _, route := range r.Routes() {
		assert.NotContains(t, route.Path, "pprof", "pprof routes are registered erroneously! Route: %s", route)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := testEngine(t)

	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(http.MethodDelete, "/version", nil)
	r.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}
