package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/api"
	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

func newTestServer(t *testing.T) (*api.Server, *storage.Storage) {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	server := api.NewServer(api.DefaultConfig(), store, slog.New(slog.DiscardHandler))
	return server, store
}

func serve(t *testing.T, server *api.Server, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec.Code
}

func TestServer_HealthEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		var response dto.HealthResponse

		code := serve(t, server, path, &response)

		assert.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, "ok", response.Status)
	}
}

func TestServer_RunHistory(t *testing.T) {
	// Arrange
	server, store := newTestServer(t)
	ctx := context.Background()

	runID, err := store.StartRun(ctx, storage.RunStart{SourcePath: "june.csv", SourceCount: 3, TargetCount: 4})
	require.NoError(t, err)
	require.NoError(t, store.RecordPair(ctx, &storage.MatchedPair{
		RunID:        runID,
		Phase:        "automatic",
		SourceID:     "s1",
		SourceDate:   "2025-06-01",
		SourceAmount: "1.00",
		TargetID:     "t1",
	}))
	require.NoError(t, store.CompleteRun(ctx, runID, storage.RunSummary{
		Status:      storage.RunStatusCompleted,
		AutoMatched: 1,
		Written:     4,
	}))

	// Act
	var list dto.RunListResponse
	listCode := serve(t, server, "/api/runs", &list)
	var run dto.RunResponse
	runCode := serve(t, server, "/api/runs/1", &run)
	var pairs dto.PairListResponse
	pairsCode := serve(t, server, "/api/runs/1/pairs", &pairs)

	// Assert
	assert.Equal(t, http.StatusOK, listCode)
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusOK, runCode)
	assert.Equal(t, "june.csv", run.SourcePath)
	assert.Equal(t, storage.RunStatusCompleted, run.Status)
	assert.Equal(t, 4, run.Written)
	assert.NotEmpty(t, run.CompletedAt)

	assert.Equal(t, http.StatusOK, pairsCode)
	require.Equal(t, 1, pairs.Count)
	assert.Equal(t, "automatic", pairs.Pairs[0].Phase)
}

func TestServer_MissingRun(t *testing.T) {
	server, _ := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, serve(t, server, "/api/runs/42", nil))
	assert.Equal(t, http.StatusNotFound, serve(t, server, "/api/runs/42/pairs", nil))
}

func TestServer_Ledger(t *testing.T) {
	server, store := newTestServer(t)
	require.NoError(t, store.ReplaceLedger(context.Background(), []storage.LedgerRow{
		{EntryID: "a", Date: "2025-06-01", Amount: "-4.20", Memo: "Coffee", Status: "pending"},
	}))
	var response dto.LedgerResponse

	code := serve(t, server, "/api/ledger", &response)

	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, response.Count)
	assert.Equal(t, "-4.20", response.Entries[0].Amount)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	server, _ := newTestServer(t)

	assert.NoError(t, server.Shutdown(context.Background()))
}
