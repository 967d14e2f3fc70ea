package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Project is a project as stored by the fake cloud API.
type Project struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// CloudAPI is a fake of the cloud console's private project API mounted at /v1.
type CloudAPI struct {
	Server *httptest.Server

	// UserToken is the bearer token the API accepts, and the secret_token returned for a user exchange.
	UserToken string
	// ProjectTokenPrefix prefixes the secret_token returned for a project_user exchange.
	ProjectTokenPrefix string

	// FailPage makes the listing return HTTP 500 for that page number.
	FailPage int
	// MalformedPage makes the listing return invalid JSON for that page number.
	MalformedPage int
	// TokenResponse overrides the raw JSON body returned by POST /_tokens.
	TokenResponse string
	// TokenStatus overrides the status code returned by POST /_tokens.
	TokenStatus int

	mu          sync.Mutex
	projects    []Project
	nextID      uint64
	pageFetches []int
	tokenBodies []map[string]any
	deleted     []uint64
}

// NewCloudAPI starts a fake cloud API; it is closed with the test.
func NewCloudAPI(t *testing.T) *CloudAPI {
	t.Helper()

	a := &CloudAPI{
		UserToken:          "user-secret-token",
		ProjectTokenPrefix: "project-secret-token-",
		nextID:             100000,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/_projects", a.handleListProjects)
	mux.HandleFunc("POST /v1/_projects", a.handleCreateProject)
	mux.HandleFunc("DELETE /v1/_projects/{id}", a.handleDeleteProject)
	mux.HandleFunc("POST /v1/_tokens", a.handleTokens)
	a.Server = httptest.NewServer(mux)
	t.Cleanup(a.Server.Close)

	return a
}

// URL is the API base URL, including the /v1 prefix.
func (a *CloudAPI) URL() string { return a.Server.URL + "/v1" }

// AddProjects appends projects with the given names and returns their IDs.
func (a *CloudAPI) AddProjects(names ...string) []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]uint64, 0, len(names))
	for _, name := range names {
		a.nextID++
		a.projects = append(a.projects, Project{ID: a.nextID, Name: name})
		ids = append(ids, a.nextID)
	}
	return ids
}

// AddNumberedProjects appends n projects named "<prefix>-1" through "<prefix>-n".
func (a *CloudAPI) AddNumberedProjects(prefix string, n int) []uint64 {
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		names = append(names, fmt.Sprintf("%s-%d", prefix, i))
	}
	return a.AddProjects(names...)
}

// Projects returns the current projects in listing order.
func (a *CloudAPI) Projects() []Project {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Project(nil), a.projects...)
}

// PageFetches returns the page numbers requested from the listing, in order.
func (a *CloudAPI) PageFetches() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.pageFetches...)
}

// TokenRequests returns the decoded bodies of every POST /_tokens.
func (a *CloudAPI) TokenRequests() []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]map[string]any(nil), a.tokenBodies...)
}

// Deleted returns the IDs of deleted projects.
func (a *CloudAPI) Deleted() []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uint64(nil), a.deleted...)
}

func (a *CloudAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+a.UserToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]string{"code": "unauthorized", "message": "unable to authenticate"},
		})
		return false
	}
	return true
}

func (a *CloudAPI) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 25)

	a.mu.Lock()
	a.pageFetches = append(a.pageFetches, page)
	projects := append([]Project(nil), a.projects...)
	a.mu.Unlock()

	switch page {
	case a.FailPage:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	case a.MalformedPage:
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"projects": [{"id": "not-a-number"`)
		return
	}

	start := min((page-1)*perPage, len(projects))
	end := min(start+perPage, len(projects))

	var nextPage *int
	if end < len(projects) {
		next := page + 1
		nextPage = &next
	}

	items := make([]map[string]any, 0, end-start)
	for _, p := range projects[start:end] {
		items = append(items, map[string]any{"id": p.ID, "name": p.Name, "usage_alert_threshold": nil})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projects": items,
		"meta": map[string]any{
			"pagination": map[string]any{"page": page, "per_page": perPage, "next_page": nextPage},
		},
	})
}

func (a *CloudAPI) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]string{"code": "invalid_input", "message": "name is required"},
		})
		return
	}

	ids := a.AddProjects(body.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"project": map[string]any{"id": ids[0], "name": body.Name, "usage_alert_threshold": nil},
	})
}

func (a *CloudAPI) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(w, r) {
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, p := range a.projects {
		if p.ID == id {
			a.projects = append(a.projects[:i], a.projects[i+1:]...)
			a.deleted = append(a.deleted, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.NotFound(w, r)
}

func (a *CloudAPI) handleTokens(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.tokenBodies = append(a.tokenBodies, body)
	a.mu.Unlock()

	if a.TokenStatus != 0 || a.TokenResponse != "" {
		status := a.TokenStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, a.TokenResponse)
		return
	}

	switch body["type"] {
	case "user":
		if body["access_token"] == nil || body["id_token"] == nil {
			http.Error(w, "missing tokens", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"secret_token": a.UserToken})
	case "project_user":
		if !a.authorized(w, r) {
			return
		}
		project, _ := body["project"].(string)
		if strings.TrimSpace(project) == "" {
			http.Error(w, "missing project", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"secret_token": a.ProjectTokenPrefix + project})
	default:
		http.Error(w, "unknown token type", http.StatusBadRequest)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
