package matrix_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-resourceforms/pkg/api"
	"github.com/goliatone/go-resourceforms/pkg/page/matrix"
	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/testsupport"
)

func newPage(t *testing.T, fake *testsupport.FakeAPI, onAdd matrix.AddFunc) *matrix.Page {
	t.Helper()
	client, err := api.New(fake.BaseURL())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	page, err := matrix.New(client, onAdd)
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	return page
}

func TestNewRequiresAddHandler(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	client, err := api.New(fake.BaseURL())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := matrix.New(client, nil); !errors.Is(err, matrix.ErrNoAddHandler) {
		t.Fatalf("expected ErrNoAddHandler, got %v", err)
	}
}

func TestMountKeepsElements(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	page := newPage(t, fake, matrix.DefaultAddFunc)

	if err := page.Mount(testsupport.Context()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	state := page.State()
	if !state.Mounted || len(state.Elements) != 2 {
		t.Fatalf("expected 2 elements in state, got %+v", state)
	}
	if fake.Calls(http.MethodGet, resource.BaseElement) != 1 || fake.TotalCalls() != 1 {
		t.Fatalf("expected a single GET base_element, got %d calls", fake.TotalCalls())
	}
}

func TestMountFailureKeptInState(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	fake.Fail(http.MethodGet, resource.BaseElement, http.StatusServiceUnavailable)
	page := newPage(t, fake, matrix.DefaultAddFunc)

	if err := page.Mount(testsupport.Context()); !errors.Is(err, api.ErrUnexpectedStatus) {
		t.Fatalf("expected status error, got %v", err)
	}
	view := page.View()
	if view.Matrix.Error == "" || view.Matrix.ElementCount != 0 {
		t.Fatalf("expected error in view, got %+v", view.Matrix)
	}
}

func TestAddUsesHandler(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	var seen int
	page := newPage(t, fake, func(_ context.Context, elements []resource.Record, existing []matrix.Placeholder) (matrix.Placeholder, error) {
		seen = len(elements)
		return matrix.Placeholder{ID: "m" + string(rune('0'+len(existing))), Title: "custom"}, nil
	})
	if err := page.Mount(testsupport.Context()); err != nil {
		t.Fatalf("mount: %v", err)
	}

	for range 2 {
		if _, err := page.Add(context.Background()); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if seen != 2 {
		t.Fatalf("handler should receive loaded elements, got %d", seen)
	}
	state := page.State()
	if len(state.Placeholders) != 2 || state.Placeholders[1].ID != "m1" {
		t.Fatalf("unexpected placeholders %+v", state.Placeholders)
	}
}

func TestAddHandlerError(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	boom := errors.New("boom")
	page := newPage(t, fake, func(context.Context, []resource.Record, []matrix.Placeholder) (matrix.Placeholder, error) {
		return matrix.Placeholder{}, boom
	})
	if _, err := page.Add(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if len(page.State().Placeholders) != 0 {
		t.Fatalf("failed add must not append")
	}
}

func TestConcurrentAddsGetDistinctTitles(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	slowAdd := func(ctx context.Context, elements []resource.Record, existing []matrix.Placeholder) (matrix.Placeholder, error) {
		time.Sleep(2 * time.Millisecond)
		return matrix.DefaultAddFunc(ctx, elements, existing)
	}
	page := newPage(t, fake, slowAdd)

	const workers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := page.Add(testsupport.Context()); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	placeholders := page.State().Placeholders
	if len(placeholders) != workers {
		t.Fatalf("expected %d placeholders, got %d", workers, len(placeholders))
	}
	titles := make(map[string]int, workers)
	for _, placeholder := range placeholders {
		titles[placeholder.Title]++
	}
	for i := 1; i <= workers; i++ {
		title := fmt.Sprintf("Matrix %d", i)
		if titles[title] != 1 {
			t.Fatalf("expected %q exactly once, got titles %v", title, titles)
		}
	}
}

func TestDefaultAddFunc(t *testing.T) {
	placeholder, err := matrix.DefaultAddFunc(context.Background(), nil, []matrix.Placeholder{{ID: "a"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if placeholder.Title != "Matrix 2" {
		t.Fatalf("unexpected title %q", placeholder.Title)
	}
	if _, err := uuid.Parse(placeholder.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", placeholder.ID)
	}
}

func TestRenderPlaceholders(t *testing.T) {
	fake := testsupport.NewFakeAPI(t)
	page := newPage(t, fake, matrix.DefaultAddFunc)
	if err := page.Mount(testsupport.Context()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := page.Add(context.Background()); err != nil {
		t.Fatalf("add: %v", err)
	}

	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := page.Render(context.Background(), renderer, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `action="/matrix/add"`) || !strings.Contains(html, "Add Matrix") {
		t.Fatalf("expected add form, got:\n%s", html)
	}
	if strings.Count(html, `<section class="matrix"`) != 1 {
		t.Fatalf("expected one placeholder section, got:\n%s", html)
	}
	if !strings.Contains(html, `aria-label="Matrix 1"`) {
		t.Fatalf("expected placeholder title, got:\n%s", html)
	}
}
