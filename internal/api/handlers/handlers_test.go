package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
	"github.com/eshaffer321/statement-reconciler/internal/api/handlers"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRepo is an in-memory run history and ledger
type fakeRepo struct {
	runs   []storage.Run
	pairs  map[int64][]storage.MatchedPair
	ledger []storage.LedgerRow
	err    error
}

func (f *fakeRepo) StartRun(context.Context, storage.RunStart) (int64, error) { return 0, nil }
func (f *fakeRepo) CompleteRun(context.Context, int64, storage.RunSummary) error {
	return nil
}
func (f *fakeRepo) RecordPair(context.Context, *storage.MatchedPair) error { return nil }
func (f *fakeRepo) ReplaceLedger(context.Context, []storage.LedgerRow) error {
	return nil
}

func (f *fakeRepo) ListRuns(_ context.Context, limit int) ([]storage.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func (f *fakeRepo) GetRun(_ context.Context, id int64) (*storage.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.runs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("run %d: %w", id, storage.ErrNotFound)
}

func (f *fakeRepo) ListPairs(_ context.Context, runID int64) ([]storage.MatchedPair, error) {
	return f.pairs[runID], nil
}

func (f *fakeRepo) LoadLedger(context.Context) ([]storage.LedgerRow, error) {
	return f.ledger, f.err
}

func newRouter(repo *fakeRepo) *gin.Engine {
	r := gin.New()
	runs := handlers.NewRunsHandler(repo, nil)
	r.GET("/health", handlers.Health)
	r.GET("/api/runs", runs.List)
	r.GET("/api/runs/:id", runs.Get)
	r.GET("/api/runs/:id/pairs", runs.Pairs)
	r.GET("/api/ledger", handlers.NewLedgerHandler(repo, nil).Get)
	return r
}

func get(t *testing.T, router http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	var response dto.HealthResponse

	code := get(t, newRouter(&fakeRepo{}), "/health", &response)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", response.Status)
	assert.NotEmpty(t, response.Timestamp)
}

func TestRunsHandler_List(t *testing.T) {
	t.Run("returns empty list when no runs", func(t *testing.T) {
		var response dto.RunListResponse

		code := get(t, newRouter(&fakeRepo{}), "/api/runs", &response)

		assert.Equal(t, http.StatusOK, code)
		assert.NotNil(t, response.Runs)
		assert.Empty(t, response.Runs)
		assert.Equal(t, 0, response.Count)
	})

	t.Run("respects limit parameter", func(t *testing.T) {
		repo := &fakeRepo{runs: []storage.Run{{ID: 3}, {ID: 2}, {ID: 1}}}
		var response dto.RunListResponse

		code := get(t, newRouter(repo), "/api/runs?limit=2", &response)

		assert.Equal(t, http.StatusOK, code)
		require.Len(t, response.Runs, 2)
		assert.Equal(t, int64(3), response.Runs[0].ID)
	})

	t.Run("returns 500 on storage error", func(t *testing.T) {
		repo := &fakeRepo{err: errors.New("disk on fire")}
		var response dto.APIError

		code := get(t, newRouter(repo), "/api/runs", &response)

		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, dto.ErrCodeInternalError, response.Code)
		assert.NotContains(t, response.Message, "disk")
	})
}

func TestRunsHandler_Get(t *testing.T) {
	repo := &fakeRepo{runs: []storage.Run{{
		ID:          1,
		SourcePath:  "june.csv",
		AutoMatched: 12,
		Confirmed:   3,
		Added:       2,
		Status:      storage.RunStatusCompleted,
	}}}

	t.Run("returns run by ID", func(t *testing.T) {
		var response dto.RunResponse

		code := get(t, newRouter(repo), "/api/runs/1", &response)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, int64(1), response.ID)
		assert.Equal(t, "june.csv", response.SourcePath)
		assert.Equal(t, 12, response.AutoMatched)
		assert.Equal(t, 3, response.Confirmed)
		assert.Equal(t, "completed", response.Status)
	})

	t.Run("returns 404 for non-existent run", func(t *testing.T) {
		var response dto.APIError

		code := get(t, newRouter(repo), "/api/runs/999", &response)

		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, dto.ErrCodeNotFound, response.Code)
	})

	t.Run("returns 400 for invalid ID", func(t *testing.T) {
		var response dto.APIError

		code := get(t, newRouter(repo), "/api/runs/invalid", &response)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeBadRequest, response.Code)
	})
}

func TestRunsHandler_Pairs(t *testing.T) {
	repo := &fakeRepo{
		runs: []storage.Run{{ID: 4}, {ID: 5}},
		pairs: map[int64][]storage.MatchedPair{
			4: {{
				RunID:             4,
				Phase:             "semi-automatic",
				SourceID:          "s1",
				SourceAmount:      "-21.00",
				SourceDescription: "BOOTS",
				TargetID:          "t1",
				TargetDescription: "Chemist",
				Normalized:        true,
				OriginalAmount:    "-20.00",
			}},
		},
	}

	t.Run("returns pairs for run", func(t *testing.T) {
		var response dto.PairListResponse

		code := get(t, newRouter(repo), "/api/runs/4/pairs", &response)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, int64(4), response.RunID)
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "BOOTS", response.Pairs[0].SourceDescription)
		assert.True(t, response.Pairs[0].Normalized)
		assert.Equal(t, "-20.00", response.Pairs[0].OriginalAmount)
	})

	t.Run("returns empty list for run without pairs", func(t *testing.T) {
		var response dto.PairListResponse

		code := get(t, newRouter(repo), "/api/runs/5/pairs", &response)

		assert.Equal(t, http.StatusOK, code)
		assert.NotNil(t, response.Pairs)
		assert.Equal(t, 0, response.Count)
	})

	t.Run("returns 404 for unknown run", func(t *testing.T) {
		code := get(t, newRouter(repo), "/api/runs/6/pairs", nil)

		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestLedgerHandler_Get(t *testing.T) {
	repo := &fakeRepo{ledger: []storage.LedgerRow{
		{EntryID: "a", Date: "2025-06-01", Amount: "-4.20", Memo: "Coffee", Status: "pending"},
		{EntryID: "b", Date: "2025-06-02", Amount: "1500.00", Memo: "Salary", Status: "reconciled"},
	}}

	t.Run("returns all entries", func(t *testing.T) {
		var response dto.LedgerResponse

		code := get(t, newRouter(repo), "/api/ledger", &response)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, response.Count)
		assert.Equal(t, 1, response.Reconciled)
		assert.Equal(t, "Coffee", response.Entries[0].Memo)
	})

	t.Run("filters by status", func(t *testing.T) {
		var response dto.LedgerResponse

		code := get(t, newRouter(repo), "/api/ledger?status=pending", &response)

		assert.Equal(t, http.StatusOK, code)
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "a", response.Entries[0].ID)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		code := get(t, newRouter(repo), "/api/ledger?status=void", nil)

		assert.Equal(t, http.StatusBadRequest, code)
	})
}
