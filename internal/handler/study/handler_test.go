package study

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/morningistar/study-buddy/internal/model/study"
)

func setupRouter() *chi.Mux {
	content := study.NewMemoryStore(study.SeedTips(), study.SeedResources())
	handler := New(content)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestListTips(t *testing.T) {
	r := setupRouter()

	resp := get(t, r, "/study/tips")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var tips []study.Tip
	if err := json.Unmarshal(resp.Body.Bytes(), &tips); err != nil {
		t.Fatalf("decode tips: %v", err)
	}
	if len(tips) == 0 {
		t.Fatal("expected seeded tips")
	}
}

func TestListTipsFilteredByTopic(t *testing.T) {
	r := setupRouter()

	resp := get(t, r, "/study/tips?topic=memory")
	var tips []study.Tip
	if err := json.Unmarshal(resp.Body.Bytes(), &tips); err != nil {
		t.Fatalf("decode tips: %v", err)
	}
	if len(tips) == 0 {
		t.Fatal("expected memory tips")
	}
	for _, tip := range tips {
		if tip.Topic != "memory" {
			t.Fatalf("unexpected topic in filtered result: %s", tip.Topic)
		}
	}
}

func TestListResources(t *testing.T) {
	r := setupRouter()

	resp := get(t, r, "/study/resources")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var resources []study.Resource
	if err := json.Unmarshal(resp.Body.Bytes(), &resources); err != nil {
		t.Fatalf("decode resources: %v", err)
	}
	if len(resources) == 0 {
		t.Fatal("expected seeded resources")
	}
	for _, resource := range resources {
		if resource.URL == "" {
			t.Fatalf("resource without URL: %+v", resource)
		}
	}
}
