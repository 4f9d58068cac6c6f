package jsonview_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-resourceforms/pkg/loader"
	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/renderers/jsonview"
	"github.com/goliatone/go-resourceforms/pkg/resource"
)

func TestRenderPage(t *testing.T) {
	page := render.Page{
		Kind:    render.PageForm,
		Title:   "Resources",
		MountID: "form",
		Groups: []render.GroupView{{
			Type:    resource.BaseElement,
			Title:   "base element",
			Status:  loader.StatusFailed,
			Error:   "boom",
			Records: []render.RecordView{},
		}},
	}

	renderer := jsonview.New(jsonview.WithIndent("  "))
	if renderer.Name() != "json" || renderer.ContentType() != "application/json" {
		t.Fatalf("unexpected renderer identity")
	}
	out, err := renderer.Render(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded render.Page
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(page, decoded); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := jsonview.New().Render(ctx, render.Page{}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}
