package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"bitwise74/dashboard-api/db"
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/model"
	"bitwise74/dashboard-api/internal/service"
	"bitwise74/dashboard-api/pkg/middleware"
	"bitwise74/dashboard-api/pkg/security"
	"bitwise74/dashboard-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type resetMail struct {
	to, token string
}

type chanMailer chan resetMail

func (m chanMailer) SendReset(to, _, token string) error {
	m <- resetMail{to, token}
	return nil
}

type memSnapshots struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memSnapshots) PutSnapshot(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = body
	return nil
}

func (m *memSnapshots) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			delete(m.objects, k)
		}
	}
	return nil
}

type testEnv struct {
	r     *gin.Engine
	d     *internal.Deps
	mails chanMailer
	snaps *memSnapshots
}

func newEnv(t *testing.T, withStorage bool) *testEnv {
	t.Helper()

	gdb, err := db.New("sqlite", ":memory:")
	require.NoError(t, err)

	hasher := &security.Hasher{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	tokens := security.NewTokenCodec("test-secret", time.Hour)
	mails := make(chanMailer, 4)

	d := &internal.Deps{
		DB:        gdb,
		Tokens:    tokens,
		Validator: validators.MustNew(),
		Users: &service.Users{
			DB:       gdb,
			Hasher:   hasher,
			Tokens:   tokens,
			Mailer:   mails,
			ResetTTL: time.Hour,
		},
		Sources:    &service.Sources{DB: gdb},
		Dashboards: service.NewDashboards(gdb, hasher),
		Prober:     service.NewProber(time.Second),
	}

	env := &testEnv{d: d, mails: mails}
	if withStorage {
		env.snaps = &memSnapshots{objects: map[string][]byte{}}
		d.Snapshots = env.snaps
	}

	env.r = NewRouter(d, Options{AllowOrigins: []string{"http://localhost:3000"}, RateLimit: 1000})
	return env
}

func (e *testEnv) call(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-access-token", token)
	}

	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// signup registers a user and returns their access token and ID
func (e *testEnv) signup(t *testing.T, username string) (string, string) {
	t.Helper()

	w, body := e.call(t, http.MethodPost, "/users/create", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])

	w, body = e.call(t, http.MethodPost, "/users/authenticate", "", gin.H{
		"username": username,
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	return body["token"].(string), body["user"].(map[string]any)["id"].(string)
}

// soft asserts the request failed inside a 200 response
func soft(t *testing.T, w *httptest.ResponseRecorder, body map[string]any, status int, msg string) {
	t.Helper()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, status, body["status"])
	assert.Equal(t, msg, body["message"])
}

func TestHeartbeat(t *testing.T) {
	e := newEnv(t, false)

	w, _ := e.call(t, http.MethodHead, "/heartbeat", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.call(t, http.MethodGet, "/heartbeat", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_NoOrigins(t *testing.T) {
	e := newEnv(t, false)

	var r *gin.Engine
	require.NotPanics(t, func() { r = NewRouter(e.d, Options{}) })

	req := httptest.NewRequest(http.MethodGet, "/heartbeat", nil)
	req.Header.Set("Origin", "http://frontend.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUsers_RegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t, false)
	token, id := e.signup(t, "group19")

	claims, err := e.d.Tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.ID)

	w, body := e.call(t, http.MethodPost, "/users/create", "", gin.H{
		"username": "group19",
		"email":    "other@example.com",
		"password": "secret",
	})
	soft(t, w, body, http.StatusConflict, service.MsgUserExists)

	// E-mail comparison happens after lowercasing
	w, body = e.call(t, http.MethodPost, "/users/create", "", gin.H{
		"username": "someone",
		"email":    "  GROUP19@example.com ",
		"password": "secret",
	})
	soft(t, w, body, http.StatusConflict, service.MsgUserExists)

	w, body = e.call(t, http.MethodPost, "/users/authenticate", "", gin.H{"username": "group19", "password": "nope!"})
	soft(t, w, body, http.StatusUnauthorized, service.MsgPasswordInvalid)

	w, body = e.call(t, http.MethodPost, "/users/authenticate", "", gin.H{"username": "ghost", "password": "secret"})
	soft(t, w, body, http.StatusUnauthorized, service.MsgUserNotFound)
}

func TestUsers_Validation(t *testing.T) {
	e := newEnv(t, false)

	w, body := e.call(t, http.MethodPost, "/users/create", "", gin.H{
		"username": "group19",
		"email":    "not-an-email",
		"password": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, http.StatusBadRequest, body["status"])

	w, _ = e.call(t, http.MethodPost, "/users/authenticate", "", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers_PasswordReset(t *testing.T) {
	e := newEnv(t, false)
	e.signup(t, "group19")

	w, body := e.call(t, http.MethodPost, "/users/resetpassword", "", gin.H{"username": "ghost"})
	soft(t, w, body, http.StatusNotFound, service.MsgResetUnknown)

	w, body = e.call(t, http.MethodPost, "/users/resetpassword", "", gin.H{"username": "group19"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Forgot password e-mail sent.", body["message"])

	var mail resetMail
	select {
	case mail = <-e.mails:
	case <-time.After(2 * time.Second):
		t.Fatal("reset mail was not sent")
	}
	assert.Equal(t, "group19@example.com", mail.to)

	// The body is checked before the token
	w, _ = e.call(t, http.MethodPost, "/users/changepassword", "", gin.H{"password": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = e.call(t, http.MethodPost, "/users/changepassword", "", gin.H{"password": "newsecret"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.ErrTokenMissing, body["message"])

	w, body = e.call(t, http.MethodPost, "/users/changepassword", mail.token, gin.H{"password": "newsecret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password was changed.", body["message"])

	w, body = e.call(t, http.MethodPost, "/users/changepassword", mail.token, gin.H{"password": "another"})
	soft(t, w, body, http.StatusGone, service.MsgResetExpired)

	w, body = e.call(t, http.MethodPost, "/users/authenticate", "", gin.H{"username": "group19", "password": "newsecret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["token"])
}

func TestResetTokenScope(t *testing.T) {
	e := newEnv(t, false)
	access, _ := e.signup(t, "alice")
	e.signup(t, "bob")

	reset := func(username string) string {
		w, _ := e.call(t, http.MethodPost, "/users/resetpassword", "", gin.H{"username": username})
		require.Equal(t, http.StatusOK, w.Code)

		select {
		case m := <-e.mails:
			return m.token
		case <-time.After(2 * time.Second):
			t.Fatal("reset mail was not sent")
			return ""
		}
	}

	aliceReset := reset("alice")
	bobReset := reset("bob")

	w, body := e.call(t, http.MethodPost, "/dashboards/create-dashboard", aliceReset, gin.H{"name": "leak"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.ErrTokenScope, body["message"])

	for _, path := range []string{"/dashboards/dashboards", "/sources/sources"} {
		w, body = e.call(t, http.MethodGet, path, bobReset, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, middleware.ErrTokenScope, body["message"], path)
	}

	var count int64
	require.NoError(t, e.d.DB.Model(&model.Dashboard{}).Count(&count).Error)
	assert.Zero(t, count)

	// Access tokens can't change a password
	w, body = e.call(t, http.MethodPost, "/users/changepassword", access, gin.H{"password": "newsecret"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.ErrTokenScope, body["message"])

	w, _ = e.call(t, http.MethodPost, "/users/changepassword", aliceReset, gin.H{"password": "newsecret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGate(t *testing.T) {
	e := newEnv(t, false)

	w, body := e.call(t, http.MethodGet, "/dashboards/dashboards", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.ErrTokenMissing, body["message"])

	w, body = e.call(t, http.MethodGet, "/sources/sources?token=garbage", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.ErrTokenInvalid, body["message"])
}

func TestSources(t *testing.T) {
	e := newEnv(t, false)
	token, _ := e.signup(t, "group19")

	w, body := e.call(t, http.MethodGet, "/sources/sources", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, body["sources"])

	w, body = e.call(t, http.MethodPost, "/sources/create-source", token, gin.H{
		"name": "mqtt",
		"type": "mqtt",
		"url":  "ws://broker:9001",
	})
	require.Equal(t, true, body["success"])
	id := body["id"].(string)

	w, body = e.call(t, http.MethodPost, "/sources/create-source", token, gin.H{"name": "mqtt"})
	soft(t, w, body, http.StatusConflict, service.MsgSourceExists)

	w, body = e.call(t, http.MethodPost, "/sources/change-source", token, gin.H{"id": id, "name": "mqtt", "vhost": "/"})
	require.Equal(t, true, body["success"])

	w, body = e.call(t, http.MethodGet, "/sources/source?name=mqtt", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	src := body["source"].(map[string]any)
	assert.Equal(t, "/", src["vhost"])
	assert.NotContains(t, src, "owner")

	w, body = e.call(t, http.MethodPost, "/sources/check-sources", token, gin.H{"sources": []string{"mqtt", "stomp"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"stomp"}, body["newSources"])

	w, body = e.call(t, http.MethodPost, "/sources/delete-source", token, gin.H{"id": id})
	require.Equal(t, true, body["success"])

	w, body = e.call(t, http.MethodPost, "/sources/delete-source", token, gin.H{"id": id})
	soft(t, w, body, http.StatusConflict, service.MsgSourceNotFound)
}

func TestDashboards_Lifecycle(t *testing.T) {
	e := newEnv(t, false)
	token, userID := e.signup(t, "group19")

	w, body := e.call(t, http.MethodGet, "/dashboards/dashboards", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, body["dashboards"])

	w, body = e.call(t, http.MethodPost, "/dashboards/create-dashboard", token, gin.H{"name": "X"})
	require.Equal(t, true, body["success"])

	w, body = e.call(t, http.MethodPost, "/dashboards/create-dashboard", token, gin.H{"name": "X"})
	soft(t, w, body, http.StatusConflict, service.MsgDashboardExists)

	w, body = e.call(t, http.MethodGet, "/dashboards/dashboards", token, nil)
	list := body["dashboards"].([]any)
	require.Len(t, list, 1)
	id := list[0].(map[string]any)["id"].(string)

	w, body = e.call(t, http.MethodPost, "/dashboards/save-dashboard", token, gin.H{
		"id":     id,
		"layout": []any{gin.H{"i": "1"}},
		"items":  gin.H{"1": gin.H{"type": "gauge", "source": "mqtt"}},
		"nextId": 2,
	})
	require.Equal(t, true, body["success"])

	_, err := e.d.Sources.Create(context.Background(), userID, model.Source{Name: "mqtt"})
	require.NoError(t, err)

	w, body = e.call(t, http.MethodGet, "/dashboards/dashboard?id="+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := body["dashboard"].(map[string]any)
	assert.Equal(t, "X", dash["name"])
	assert.EqualValues(t, 2, dash["nextId"])
	assert.Equal(t, []any{map[string]any{"i": "1"}}, dash["layout"])
	assert.Equal(t, []any{"mqtt"}, body["sources"])
	assert.NotContains(t, dash, "password")

	w, body = e.call(t, http.MethodPost, "/dashboards/clone-dashboard", token, gin.H{"dashboardId": id, "name": "Y"})
	require.Equal(t, true, body["success"])

	w, body = e.call(t, http.MethodPost, "/dashboards/clone-dashboard", token, gin.H{"dashboardId": "missing", "name": "Z"})
	soft(t, w, body, http.StatusConflict, service.MsgDashboardNotFound)

	w, body = e.call(t, http.MethodPost, "/dashboards/delete-dashboard", token, gin.H{"id": id})
	require.Equal(t, true, body["success"])

	w, body = e.call(t, http.MethodGet, "/dashboards/dashboard?id="+id, token, nil)
	soft(t, w, body, http.StatusConflict, service.MsgDashboardNotFound)
}

func TestDashboards_ForeignOwner(t *testing.T) {
	e := newEnv(t, false)
	alice, _ := e.signup(t, "alice")
	bob, _ := e.signup(t, "bob")

	e.call(t, http.MethodPost, "/dashboards/create-dashboard", alice, gin.H{"name": "mine"})
	_, body := e.call(t, http.MethodGet, "/dashboards/dashboards", alice, nil)
	id := body["dashboards"].([]any)[0].(map[string]any)["id"].(string)

	w, body := e.call(t, http.MethodGet, "/dashboards/dashboard?id="+id, bob, nil)
	soft(t, w, body, http.StatusConflict, service.MsgDashboardNotFound)

	w, body = e.call(t, http.MethodPost, "/dashboards/share-dashboard", bob, gin.H{"dashboardId": id})
	soft(t, w, body, http.StatusConflict, service.MsgDashboardUnknownID)

	w, body = e.call(t, http.MethodPost, "/dashboards/delete-dashboard", bob, gin.H{"id": id})
	soft(t, w, body, http.StatusConflict, service.MsgDashboardNotFound)

	_, body = e.call(t, http.MethodGet, "/dashboards/dashboards", bob, nil)
	assert.Equal(t, []any{}, body["dashboards"])
}

func TestDashboards_Sharing(t *testing.T) {
	e := newEnv(t, false)
	token, userID := e.signup(t, "group19")

	e.call(t, http.MethodPost, "/dashboards/create-dashboard", token, gin.H{"name": "public"})
	_, body := e.call(t, http.MethodGet, "/dashboards/dashboards", token, nil)
	id := body["dashboards"].([]any)[0].(map[string]any)["id"].(string)

	check := func(viewer any) map[string]any {
		w, body := e.call(t, http.MethodPost, "/dashboards/check-password-needed", "", gin.H{"dashboardId": id, "user": viewer})
		require.Equal(t, http.StatusOK, w.Code)
		return body
	}

	// Not shared yet
	assert.Equal(t, map[string]any{"success": true, "owner": "", "shared": false}, check(nil))

	_, body = e.call(t, http.MethodPost, "/dashboards/share-dashboard", token, gin.H{"dashboardId": id})
	assert.Equal(t, true, body["shared"])

	body = check(gin.H{})
	assert.Equal(t, userID, body["owner"])
	assert.Equal(t, false, body["passwordNeeded"])
	assert.Contains(t, body, "dashboard")

	_, body = e.call(t, http.MethodPost, "/dashboards/change-password", token, gin.H{"dashboardId": id, "password": "pw123"})
	require.Equal(t, true, body["success"])

	body = check(nil)
	assert.Equal(t, "", body["owner"])
	assert.Equal(t, true, body["passwordNeeded"])
	assert.NotContains(t, body, "dashboard")

	body = check(gin.H{"id": userID})
	assert.Equal(t, service.OwnerSelf, body["owner"])
	assert.Equal(t, true, body["hasPassword"])

	w, body := e.call(t, http.MethodPost, "/dashboards/check-password", "", gin.H{"dashboardId": id, "password": "wrong"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["correctPassword"])
	assert.NotContains(t, body, "dashboard")

	_, body = e.call(t, http.MethodPost, "/dashboards/check-password", "", gin.H{"dashboardId": id, "password": "pw123"})
	assert.Equal(t, true, body["correctPassword"])
	assert.Equal(t, userID, body["owner"])
	assert.Equal(t, "public", body["dashboard"].(map[string]any)["name"])

	w, body = e.call(t, http.MethodPost, "/dashboards/check-password", "", gin.H{"dashboardId": "missing", "password": "pw123"})
	soft(t, w, body, http.StatusConflict, service.MsgDashboardUnknownID)

	// Two disclosures so far: the shared view without password and the
	// owner view. The unlock makes three.
	_, body = e.call(t, http.MethodGet, "/dashboards/dashboards", token, nil)
	assert.EqualValues(t, 3, body["dashboards"].([]any)[0].(map[string]any)["views"])

	_, body = e.call(t, http.MethodPost, "/dashboards/change-password", token, gin.H{"dashboardId": id, "password": nil})
	require.Equal(t, true, body["success"])
	assert.Equal(t, false, check(nil)["passwordNeeded"])
}

func TestDashboards_Export(t *testing.T) {
	e := newEnv(t, true)
	token, userID := e.signup(t, "group19")

	e.call(t, http.MethodPost, "/dashboards/create-dashboard", token, gin.H{"name": "X"})
	_, body := e.call(t, http.MethodGet, "/dashboards/dashboards", token, nil)
	id := body["dashboards"].([]any)[0].(map[string]any)["id"].(string)

	w, body := e.call(t, http.MethodPost, "/dashboards/export-dashboard", token, gin.H{"dashboardId": id})
	require.Equal(t, http.StatusOK, w.Code)
	key := body["key"].(string)
	assert.True(t, strings.HasPrefix(key, service.SnapshotPrefix(userID, id)))

	var snap map[string]any
	require.NoError(t, json.Unmarshal(e.snaps.objects[key], &snap))
	assert.Equal(t, "X", snap["name"])
	assert.Equal(t, []any{}, snap["layout"])

	w, body = e.call(t, http.MethodPost, "/dashboards/export-dashboard", token, gin.H{"dashboardId": "missing"})
	soft(t, w, body, http.StatusConflict, service.MsgDashboardNotFound)

	e.call(t, http.MethodPost, "/dashboards/delete-dashboard", token, gin.H{"id": id})
	assert.Empty(t, e.snaps.objects)
}

func TestDashboards_ExportWithoutStorage(t *testing.T) {
	e := newEnv(t, false)
	token, _ := e.signup(t, "group19")

	w, body := e.call(t, http.MethodPost, "/dashboards/export-dashboard", token, gin.H{"dashboardId": "any"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "snapshot storage is not configured", body["message"])
}

func TestGeneral_Statistics(t *testing.T) {
	e := newEnv(t, false)
	token, _ := e.signup(t, "group19")

	e.call(t, http.MethodPost, "/dashboards/create-dashboard", token, gin.H{"name": "a"})
	e.call(t, http.MethodPost, "/sources/create-source", token, gin.H{"name": "mqtt"})

	w, body := e.call(t, http.MethodGet, "/general/statistics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["users"])
	assert.EqualValues(t, 1, body["dashboards"])
	assert.EqualValues(t, 0, body["views"])
	assert.EqualValues(t, 1, body["sources"])
}

func TestGeneral_TestURL(t *testing.T) {
	e := newEnv(t, false)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		body, _ := io.ReadAll(r.Body)
		w.Write([]byte(r.Method + ":" + r.URL.Query().Get("q") + ":" + string(body)))
	}))
	defer srv.Close()

	w, body := e.call(t, http.MethodGet, "/general/test-url?url="+srv.URL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["active"])

	w, body = e.call(t, http.MethodGet, "/general/test-url?url="+srv.URL+"/down", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.EqualValues(t, http.StatusServiceUnavailable, body["status"])
	assert.Equal(t, false, body["active"])

	w, _ = e.call(t, http.MethodGet, "/general/test-url", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	q := url.Values{}
	q.Set("type", "post")
	q.Set("url", srv.URL)
	q.Set("params", `{"q":"7"}`)
	q.Set("requestBody", `{"a":1}`)

	w, body = e.call(t, http.MethodGet, "/general/test-url-request?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `POST:7:{"a":1}`, body["response"])

	w, _ = e.call(t, http.MethodGet, "/general/test-url-request?type=DELETE&url="+srv.URL, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	q.Set("params", "[1]")
	w, _ = e.call(t, http.MethodGet, "/general/test-url-request?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
