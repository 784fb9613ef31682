package handler

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/repository"
	"workshopportal/internal/session"
)

// memStore keeps one session in memory.
type memStore struct {
	mu    sync.Mutex
	sess  session.Session
	saves int
}

func (m *memStore) Save(_ http.ResponseWriter, _ *http.Request, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Username == "" || s.Token == "" || !s.Role.Valid() {
		return session.ErrIncomplete
	}
	m.sess = s
	m.saves++
	return nil
}

func (m *memStore) Read(_ *http.Request) session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

func (m *memStore) Clear(_ http.ResponseWriter, _ *http.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = session.Session{}
	return nil
}

type fakeSessions struct {
	mu      sync.Mutex
	revoked []string
	active  map[entity.Role]int
	recent  []entity.SessionRecord
}

func (f *fakeSessions) RevokeUsers(_ context.Context, usernames []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, usernames...)
	return int64(len(usernames)), nil
}

func (f *fakeSessions) CountActive(context.Context) (map[entity.Role]int, error) {
	return f.active, nil
}

func (f *fakeSessions) ListActive(context.Context, int) ([]entity.SessionRecord, error) {
	return f.recent, nil
}

type fakeAttempts struct {
	mu       sync.Mutex
	saved    []entity.LoginAttempt
	activity []repository.DayActivity
}

func (f *fakeAttempts) Save(_ context.Context, a entity.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, a)
	return nil
}

func (f *fakeAttempts) DailyActivity(context.Context, int) ([]repository.DayActivity, error) {
	return f.activity, nil
}

// fakeChallenge accepts exactly the answer "ok".
type fakeChallenge struct{}

func (fakeChallenge) Issue(http.ResponseWriter, *http.Request) (template.HTML, error) {
	return template.HTML("<svg></svg>"), nil
}

func (fakeChallenge) Check(_ http.ResponseWriter, _ *http.Request, answer string) bool {
	return answer == "ok"
}

// fakeBackend is an in-memory workshop backend.
type fakeBackend struct {
	mu sync.Mutex

	loginStatus int
	loginBody   string
	loginCalls  int
	// loginGate, when set, holds every login call until it is closed.
	loginGate    chan struct{}
	loginEntered chan struct{}

	users        []entity.User
	workshops    []entity.Workshop
	registered   []entity.Workshop
	participants []entity.Participant

	marks        []entity.AttendanceMark
	unregistered []int64
	deletedUsers []string
	signups      int
	updates      []entity.User
}

func newFakeBackend(t *testing.T) (*fakeBackend, *backend.Client) {
	t.Helper()

	f := &fakeBackend{
		loginStatus: http.StatusOK,
		loginBody:   `{"role":"student","token":"backend-token"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.loginCalls++
		status, body, gate, entered := f.loginStatus, f.loginBody, f.loginGate, f.loginEntered
		f.mu.Unlock()
		if gate != nil {
			entered <- struct{}{}
			<-gate
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.signups++
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /api/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("POST /api/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {})

	mux.HandleFunc("GET /api/workshops", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, nonNil(f.workshops))
	})
	mux.HandleFunc("GET /api/workshops/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, ws := range f.workshops {
			if r.PathValue("id") == itoa(ws.ID) {
				writeJSON(w, ws)
				return
			}
		}
		http.Error(w, `{"message":"Workshop not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /api/workshops", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, entity.Workshop{ID: 99}) })
	mux.HandleFunc("PUT /api/workshops/{id}", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, entity.Workshop{}) })
	mux.HandleFunc("DELETE /api/workshops/{id}", func(w http.ResponseWriter, r *http.Request) {})

	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, nonNil(f.users))
	})
	mux.HandleFunc("GET /api/users/{key}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, u := range f.users {
			if u.Username == r.PathValue("key") {
				writeJSON(w, u)
				return
			}
		}
		http.Error(w, `{"message":"User not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, entity.User{}) })
	mux.HandleFunc("PUT /api/users/{key}", func(w http.ResponseWriter, r *http.Request) {
		var u entity.User
		_ = json.NewDecoder(r.Body).Decode(&u)
		f.mu.Lock()
		f.updates = append(f.updates, u)
		f.mu.Unlock()
		writeJSON(w, u)
	})
	mux.HandleFunc("DELETE /api/users/{key}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deletedUsers = append(f.deletedUsers, r.PathValue("key"))
		f.mu.Unlock()
	})

	mux.HandleFunc("POST /api/registration", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("DELETE /api/registration/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, ws := range f.workshops {
			if r.PathValue("id") == itoa(ws.ID) {
				f.unregistered = append(f.unregistered, ws.ID)
			}
		}
	})
	mux.HandleFunc("GET /api/registration/workshops/{username}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, nonNil(f.registered))
	})

	mux.HandleFunc("POST /api/attendance/mark", func(w http.ResponseWriter, r *http.Request) {
		var m entity.AttendanceMark
		_ = json.NewDecoder(r.Body).Decode(&m)
		f.mu.Lock()
		f.marks = append(f.marks, m)
		f.mu.Unlock()
	})
	mux.HandleFunc("GET /api/attendance/workshop/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entity.AttendanceRecord{})
	})
	mux.HandleFunc("GET /api/attendance/workshop/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, nonNil(f.participants))
	})
	mux.HandleFunc("GET /api/attendance/user/{username}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []entity.AttendanceRecord{})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return f, backend.NewWithHTTPClient(srv.URL, srv.Client())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// testApp wires the router against fakes.
type testApp struct {
	store    *memStore
	api      *fakeBackend
	sessions *fakeSessions
	attempts *fakeAttempts
	router   http.Handler
}

// fixedNow is the clock every test app runs on.
var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	api, client := newFakeBackend(t)

	flashStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	view, err := NewRenderer(session.NewFlasher(flashStore))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	app := &testApp{
		store:    &memStore{},
		api:      api,
		sessions: &fakeSessions{active: map[entity.Role]int{}},
		attempts: &fakeAttempts{},
	}
	app.router = NewRouter(Deps{
		Store:    app.store,
		API:      client,
		Sessions: app.sessions,
		Attempts: app.attempts,
		Captcha:  fakeChallenge{},
		View:     view,
		Now:      func() time.Time { return fixedNow },
	})
	return app
}

func (a *testApp) signIn(username string, role entity.Role) {
	a.store.sess = session.Session{Username: username, Role: role, Token: "tok-" + username}
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:5555"
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

func hasFlash(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.FlashCookieName {
			return true
		}
	}
	return false
}
