package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-resourceforms/pkg/api"
	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/schema"
	"github.com/goliatone/go-resourceforms/pkg/testsupport"
)

func TestClientSchemaUsesOptions(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	client, err := api.New(fake.BaseURL())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	s, err := client.Schema(testsupport.Context(), resource.PossibleSpecification)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, ok := s.Lookup("specification_name"); !ok {
		t.Fatalf("expected specification_name field, got %+v", s.Fields())
	}
	if got := fake.Calls(http.MethodOptions, resource.PossibleSpecification); got != 1 {
		t.Fatalf("expected one OPTIONS request, got %d", got)
	}
	if got := fake.Calls(http.MethodOptions, resource.BaseElement); got != 0 {
		t.Fatalf("expected no OPTIONS against base_element, got %d", got)
	}
}

func TestClientList(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	client, err := api.New(fake.BaseURL() + "/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	records, err := client.List(testsupport.Context(), resource.BaseElement)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID() != "1" || records[0]["label"] != "Battery" {
		t.Fatalf("unexpected first record %+v", records[0])
	}
}

func TestClientListUnwrapsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 1, "next": null, "results": [{"id": 9}]}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	records, err := client.List(testsupport.Context(), resource.Composition)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID() != "9" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestClientStatusError(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	fake.Fail(http.MethodOptions, resource.Specification, http.StatusForbidden)

	client, err := api.New(fake.BaseURL())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Schema(testsupport.Context(), resource.Specification)
	if !errors.Is(err, api.ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 StatusError, got %v", err)
	}
}

func TestClientSchemaWithoutPostAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Base Element List", "description": ""}`))
	}))
	defer server.Close()

	client, _ := api.New(server.URL)
	if _, err := client.Schema(testsupport.Context(), resource.BaseElement); !errors.Is(err, schema.ErrNoPostAction) {
		t.Fatalf("expected ErrNoPostAction, got %v", err)
	}
}

func TestClientTimeout(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	fake.Delay(200 * time.Millisecond)

	client, err := api.New(fake.BaseURL(), api.WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.List(testsupport.Context(), resource.BaseElement); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestClientSendsHeadersAndCreates(t *testing.T) {
	var gotAuth, gotContentType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 10, "label": "Panel"}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL, api.WithHeader("Authorization", "Token abc"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	created, err := client.Create(testsupport.Context(), resource.BaseElement, resource.Record{"label": "Panel"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID() != "10" {
		t.Fatalf("unexpected created record %+v", created)
	}
	if gotMethod != http.MethodPost || gotAuth != "Token abc" || gotContentType != "application/json" {
		t.Fatalf("unexpected request method=%q auth=%q content-type=%q", gotMethod, gotAuth, gotContentType)
	}
}

func TestNewRequiresBase(t *testing.T) {
	if _, err := api.New("  "); err == nil {
		t.Fatalf("expected error for empty base")
	}
}
