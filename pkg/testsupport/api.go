package testsupport

import (
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-resourceforms/pkg/resource"
)

// FakeAPI serves the recorded metadata and list fixtures under /api/<type>.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int
	delay    time.Duration
	created  []resource.Record
}

// NewFakeAPI starts a fixture server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	api := &FakeAPI{
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Server.Close)
	return api
}

// BaseURL is the API root to hand to clients.
func (a *FakeAPI) BaseURL() string {
	return a.Server.URL + "/api"
}

// Fail makes requests with method for typ answer with status.
func (a *FakeAPI) Fail(method string, typ resource.Type, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[key(method, typ)] = status
}

// Delay holds every response for d.
func (a *FakeAPI) Delay(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
}

// Calls reports how many requests with method reached typ.
func (a *FakeAPI) Calls(method string, typ resource.Type) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[key(method, typ)]
}

// TotalCalls reports every request served.
func (a *FakeAPI) TotalCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for _, count := range a.calls {
		total += count
	}
	return total
}

// Created returns the records accepted through POST, in arrival order.
func (a *FakeAPI) Created() []resource.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]resource.Record(nil), a.created...)
}

func (a *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	tag := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	typ, err := resource.Parse(tag)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	a.mu.Lock()
	a.calls[key(r.Method, typ)]++
	status := a.failures[key(r.Method, typ)]
	delay := a.delay
	a.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	if r.Method == http.MethodPost {
		a.create(w, r)
		return
	}

	var name string
	switch r.Method {
	case http.MethodOptions:
		name = string(typ) + ".options.json"
	case http.MethodGet:
		name = string(typ) + ".list.json"
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func key(method string, typ resource.Type) string {
	return strings.ToUpper(method) + " " + string(typ)
}

func (a *FakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var record resource.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.created = append(a.created, maps.Clone(record))
	record["id"] = 100 + len(a.created)
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(record)
}
