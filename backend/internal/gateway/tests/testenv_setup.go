package tests

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"schedule_web/backend/internal/admin"
	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/gateway"
	"schedule_web/backend/internal/gateway/handlers"
	"schedule_web/backend/internal/gateway/session"
	"schedule_web/backend/internal/shared"
	"schedule_web/backend/internal/timetable"
)

// call is one request the fake backend received.
type call struct {
	Method string
	Path   string
	CSRF   string
	Body   map[string]interface{}
}

// FakeBackend imitates the scheduling REST API for the teacher and schedule
// endpoints.
type FakeBackend struct {
	mu        sync.Mutex
	teachers  []map[string]interface{}
	schedule  []map[string]interface{}
	calls     []call
	fetches   int
	generated int
}

func newFakeBackend() *FakeBackend {
	return &FakeBackend{
		teachers: []map[string]interface{}{
			{"id": 1, "name": "อ.สมชาย"},
		},
		schedule: []map[string]interface{}{
			{"id": 1, "Day": "จันทร์", "Teacher": "อ.สมชาย", "Room": "R101", "Student_Group": "CS1",
				"Subject_Name": "Programming", "Course_Code": "CS101", "Type": "lecture", "Hour": 9, "Hour_Start": 9, "Hour_End": 11},
			{"id": 2, "Day": "พุธ", "Teacher": "อ.สมชาย", "Room": "LAB1", "Student_Group": "CS1",
				"Subject_Name": "Programming Lab", "Course_Code": "CS101L", "Type": "lab", "Hour": 13},
			{"id": 3, "Day": "อังคาร", "Teacher": "อ.วิไล", "Room": "R102", "Student_Group": "CS2",
				"Subject_Name": "Data Structures", "Course_Code": "CS201", "Type": "lecture", "Hour": 10},
		},
	}
}

func (f *FakeBackend) record(r *http.Request) {
	c := call{Method: r.Method, Path: r.URL.Path, CSRF: r.Header.Get("X-CSRFToken")}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&c.Body)
	}
	f.calls = append(f.calls, c)
}

// Calls returns a copy of the received mutating calls.
func (f *FakeBackend) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Fetches counts schedule list requests.
func (f *FakeBackend) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func writeBody(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (f *FakeBackend) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, map[string]interface{}{"status": "success"})
	})

	mux.HandleFunc("GET /api/teacher/list/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeBody(w, http.StatusOK, map[string]interface{}{"status": "success", "items": f.teachers})
	})

	mux.HandleFunc("POST /api/teacher/add/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		body := f.calls[len(f.calls)-1].Body
		id := fmt.Sprint(body["id"])
		for i, t := range f.teachers {
			if fmt.Sprint(t["id"]) == id {
				f.teachers[i] = body
				writeBody(w, http.StatusOK, map[string]interface{}{"status": "success"})
				return
			}
		}
		f.teachers = append(f.teachers, body)
		writeBody(w, http.StatusOK, map[string]interface{}{"status": "success"})
	})

	mux.HandleFunc("DELETE /api/teacher/delete/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		id := r.PathValue("id")
		for i, t := range f.teachers {
			if fmt.Sprint(t["id"]) == id {
				f.teachers = append(f.teachers[:i], f.teachers[i+1:]...)
				writeBody(w, http.StatusOK, map[string]interface{}{"status": "success"})
				return
			}
		}
		writeBody(w, http.StatusOK, map[string]interface{}{"status": "error", "message": "ไม่พบรายการที่ต้องการลบ"})
	})

	mux.HandleFunc("GET /api/schedule/view/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.fetches++
		writeBody(w, http.StatusOK, map[string]interface{}{"status": "success", "schedules": f.schedule})
	})

	mux.HandleFunc("POST /api/schedule/generate/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		f.generated++
		writeBody(w, http.StatusOK, map[string]interface{}{"status": "success", "message": "สร้างตารางสำเร็จ"})
	})

	return mux
}

// TestEnv holds all the running components for the test
type TestEnv struct {
	Router   http.Handler
	Backend  *FakeBackend
	Server   *httptest.Server
	Sessions *session.Store
	Registry *prometheus.Registry

	cookies map[string]*http.Cookie
}

// Serve runs req through the router, replaying and keeping cookies like a
// browser would.
func (env *TestEnv) Serve(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range env.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	env.Router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		env.cookies[c.Name] = c
	}
	return rr
}

func testConfig(backendURL, jwtSecret string) *shared.WebConfig {
	return &shared.WebConfig{
		Environment: "development",
		LogLevel:    "info",
		HTTPPort:    shared.DefaultHTTPPort,
		GRPCPort:    shared.DefaultGRPCPort,
		Backend: shared.BackendConfig{
			URL:            backendURL,
			Timeout:        5 * time.Second,
			CSRFCookieName: "csrftoken",
		},
		Security: shared.SecurityConfig{JWTSecret: jwtSecret, SessionTTL: time.Hour},
		CORS: shared.CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-CSRFToken"},
			AllowCredentials: true,
			MaxAge:           300,
		},
		ProbeInterval: time.Minute,
	}
}

// setupGatewayTestEnv wires the web front against an in-process fake backend
func setupGatewayTestEnv(t *testing.T, jwtSecret string) *TestEnv {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Note: No .env file found, using defaults")
	}

	// --- 1. Fake Backend ---
	fake := newFakeBackend()
	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)

	// --- 2. Backend Client ---
	cfg := testConfig(server.URL, jwtSecret)
	registry := prometheus.NewRegistry()
	client, err := backendapi.New(backendapi.Config{
		BaseURL:        cfg.Backend.URL,
		Timeout:        cfg.Backend.Timeout,
		CSRFCookieName: cfg.Backend.CSRFCookieName,
	}, backendapi.NewMetrics(registry), nil)
	if err != nil {
		t.Fatalf("Failed to create backend client: %v", err)
	}

	// --- 3. Sessions ---
	src := admin.Source{Backend: client}
	sessions := session.NewStore(session.Factory{
		Pages:  func() map[string]entity.Page { return admin.NewPages(src) },
		Viewer: func() *timetable.Viewer { return timetable.NewViewer(client) },
	}, cfg.Security.SessionTTL, false)
	registry.MustRegister(sessions.Collector())

	templates, err := handlers.ParseTemplates()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}

	// --- 4. Initialize Gateway Router ---
	router := gateway.SetupRoutes(gateway.Deps{
		Config:      cfg,
		Backend:     client,
		Sessions:    sessions,
		Templates:   templates,
		Gatherer:    registry,
		StorageMode: src.Mode(),
	})

	return &TestEnv{
		Router:   router,
		Backend:  fake,
		Server:   server,
		Sessions: sessions,
		Registry: registry,
		cookies:  make(map[string]*http.Cookie),
	}
}
