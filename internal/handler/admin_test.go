package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/expentra/expentra/internal/metrics"
	"github.com/expentra/expentra/internal/service"
)

func newAdminRouter(store *memoryStore, recorder *metrics.InMemoryRecorder) chi.Router {
	svc := service.NewExpenseService(store, recorder)
	h := NewAdminHandler(svc, recorder, testLogger())

	r := chi.NewRouter()
	r.Get("/admin/expenses", h.ListExpenses)
	r.Post("/admin/expenses/deactivate", h.DeactivateExpenses)
	r.Post("/admin/expenses/activate", h.ActivateExpenses)
	r.Get("/admin/expenses/{id}", h.GetExpense)
	r.Patch("/admin/expenses/{id}", h.UpdateExpense)
	r.Delete("/admin/expenses/{id}", h.DeleteExpense)
	r.Get("/admin/stats", h.Stats)
	return r
}

func TestAdminListIncludesHidden(t *testing.T) {
	store := newMemoryStore()
	seedExpense(t, store, "exp-1")
	hidden := seedExpense(t, store, "exp-2")
	hidden.IsActive = false
	router := newAdminRouter(store, metrics.NewInMemory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/admin/expenses", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response struct {
		Expenses []map[string]any `json:"expenses"`
		Total    int              `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Total != 2 {
		t.Fatalf("total = %d, want 2", response.Total)
	}
	for _, exp := range response.Expenses {
		if _, hasID := exp["id"]; !hasID {
			t.Error("staff listing must expose id")
		}
		if _, hasActive := exp["is_active"]; !hasActive {
			t.Error("staff listing must expose is_active")
		}
	}
}

func TestAdminListIsActiveFilter(t *testing.T) {
	store := newMemoryStore()
	seedExpense(t, store, "exp-1")
	hidden := seedExpense(t, store, "exp-2")
	hidden.IsActive = false
	router := newAdminRouter(store, metrics.NewInMemory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/admin/expenses?is_active=false", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response struct {
		Expenses []map[string]any `json:"expenses"`
		Total    int              `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Total != 1 {
		t.Fatalf("total = %d, want 1", response.Total)
	}
	if response.Expenses[0]["id"] != "exp-2" {
		t.Errorf("expected the hidden record, got %v", response.Expenses[0]["id"])
	}
}

func TestAdminGetReturnsHiddenRecord(t *testing.T) {
	store := newMemoryStore()
	hidden := seedExpense(t, store, "exp-1")
	hidden.IsActive = false
	router := newAdminRouter(store, metrics.NewInMemory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/admin/expenses/exp-1", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var data map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&data); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if data["id"] != "exp-1" {
		t.Errorf("id = %v", data["id"])
	}
	if data["is_active"] != false {
		t.Errorf("is_active = %v, want false", data["is_active"])
	}
}

func TestAdminUpdateHiddenRecord(t *testing.T) {
	store := newMemoryStore()
	hidden := seedExpense(t, store, "exp-1")
	hidden.IsActive = false
	router := newAdminRouter(store, metrics.NewInMemory())

	body := `{"description":"corrected","payment_date":"2024-02-10T00:00:00Z"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/admin/expenses/exp-1", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var data map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&data); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if data["description"] != "corrected" {
		t.Errorf("description = %v", data["description"])
	}
	if store.expenses["exp-1"].Description != "corrected" {
		t.Error("expected stored record to change")
	}
}

func TestAdminBulkDeactivate(t *testing.T) {
	store := newMemoryStore()
	seedExpense(t, store, "exp-1")
	seedExpense(t, store, "exp-2")
	recorder := metrics.NewInMemory()
	router := newAdminRouter(store, recorder)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/admin/expenses/deactivate", `{"ids":["exp-1","exp-2","missing"]}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Updated int64 `json:"updated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Updated != 2 {
		t.Errorf("updated = %d, want 2", response.Updated)
	}
	if store.expenses["exp-1"].IsActive || store.expenses["exp-2"].IsActive {
		t.Error("expected both records deactivated")
	}
	if store.expenses["exp-1"].DeletedBy != "Jane Doe" {
		t.Errorf("deleted_by = %q", store.expenses["exp-1"].DeletedBy)
	}
	if recorder.Snapshot().ExpensesDeactivated == 0 {
		t.Error("expected deactivation counter to move")
	}
}

func TestAdminBulkActivateKeepsDeletionTrail(t *testing.T) {
	store := newMemoryStore()
	exp := seedExpense(t, store, "exp-1")
	exp.IsActive = false
	exp.DeletedBy = "John Smith"
	router := newAdminRouter(store, metrics.NewInMemory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/admin/expenses/activate", `{"ids":["exp-1"]}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response struct {
		Updated int64 `json:"updated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Updated != 1 {
		t.Errorf("updated = %d, want 1", response.Updated)
	}
	if !store.expenses["exp-1"].IsActive {
		t.Error("expected record re-activated")
	}
	if store.expenses["exp-1"].DeletedBy != "John Smith" {
		t.Error("re-activation must not clear the deletion trail")
	}
}

func TestAdminBulkMissingIDs(t *testing.T) {
	store := newMemoryStore()
	router := newAdminRouter(store, metrics.NewInMemory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/admin/expenses/deactivate", `{}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ids"`) {
		t.Errorf("expected ids field error, got %s", rec.Body.String())
	}
}

func TestAdminStats(t *testing.T) {
	store := newMemoryStore()
	recorder := metrics.NewInMemory()
	recorder.IncExpenseCreated()
	recorder.IncAuthCacheHit()
	router := newAdminRouter(store, recorder)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/admin/stats", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response struct {
		Service  string `json:"service"`
		Version  string `json:"version"`
		Counters struct {
			ExpensesCreated uint64 `json:"expenses_created"`
			AuthCacheHits   uint64 `json:"auth_cache_hits"`
		} `json:"counters"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Service != "expentra" {
		t.Errorf("service = %q", response.Service)
	}
	if response.Counters.ExpensesCreated != 1 || response.Counters.AuthCacheHits != 1 {
		t.Errorf("unexpected counters: %+v", response.Counters)
	}
}
