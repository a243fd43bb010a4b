package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// RunHistory is the storage the runs handler reads from.
type RunHistory interface {
	storage.RunRepository
	storage.PairRepository
}

// RunsHandler handles reconciliation run requests.
type RunsHandler struct {
	repo   RunHistory
	logger *slog.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo RunHistory, logger *slog.Logger) *RunsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunsHandler{repo: repo, logger: logger}
}

// List handles GET /api/runs - returns the most recent runs first.
func (h *RunsHandler) List(c *gin.Context) {
	limit := ParseIntParam(c, "limit", 20)

	runs, err := h.repo.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		WriteError(c, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/runs/:id - returns a single run.
func (h *RunsHandler) Get(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	run, err := h.repo.GetRun(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		WriteError(c, dto.NotFoundError("run"))
		return
	}
	if err != nil {
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		WriteError(c, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, toRunResponse(*run))
}

// Pairs handles GET /api/runs/:id/pairs - returns the pairs a run recorded.
func (h *RunsHandler) Pairs(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.repo.GetRun(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(c, dto.NotFoundError("run"))
			return
		}
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		WriteError(c, dto.InternalError())
		return
	}

	pairs, err := h.repo.ListPairs(ctx, id)
	if err != nil {
		h.logger.Error("failed to list pairs", "run_id", id, "error", err)
		WriteError(c, dto.InternalError())
		return
	}

	response := dto.PairListResponse{
		RunID: id,
		Pairs: make([]dto.PairResponse, 0, len(pairs)),
		Count: len(pairs),
	}
	for _, p := range pairs {
		response.Pairs = append(response.Pairs, dto.PairResponse{
			Phase:             p.Phase,
			SourceID:          p.SourceID,
			SourceDate:        p.SourceDate,
			SourceAmount:      p.SourceAmount,
			SourceDescription: p.SourceDescription,
			TargetID:          p.TargetID,
			TargetDescription: p.TargetDescription,
			Normalized:        p.Normalized,
			OriginalAmount:    p.OriginalAmount,
		})
	}

	c.JSON(http.StatusOK, response)
}

// toRunResponse converts a storage Run to an API response.
func toRunResponse(run storage.Run) dto.RunResponse {
	return dto.RunResponse{
		ID:             run.ID,
		SourcePath:     run.SourcePath,
		TargetPath:     run.TargetPath,
		OutputPath:     run.OutputPath,
		StartedAt:      run.StartedAt,
		CompletedAt:    run.CompletedAt,
		SourceCount:    run.SourceCount,
		TargetCount:    run.TargetCount,
		AutoMatched:    run.AutoMatched,
		Confirmed:      run.Confirmed,
		SourcesDeleted: run.SourcesDeleted,
		Added:          run.Added,
		Written:        run.Written,
		Warnings:       run.Warnings,
		Status:         run.Status,
		ErrorMessage:   run.ErrorMessage,
	}
}
