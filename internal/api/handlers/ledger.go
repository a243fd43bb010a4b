package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// LedgerHandler serves the ledger kept in the database.
type LedgerHandler struct {
	repo   storage.LedgerRepository
	logger *slog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(repo storage.LedgerRepository, logger *slog.Logger) *LedgerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerHandler{repo: repo, logger: logger}
}

// Get handles GET /api/ledger. ?status=pending or ?status=reconciled filters.
func (h *LedgerHandler) Get(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", transaction.StatusPending, transaction.StatusReconciled:
	default:
		WriteError(c, dto.BadRequestError("status must be pending or reconciled"))
		return
	}

	rows, err := h.repo.LoadLedger(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load ledger", "error", err)
		WriteError(c, dto.InternalError())
		return
	}

	response := dto.LedgerResponse{Entries: make([]dto.LedgerEntryResponse, 0, len(rows))}
	for _, r := range rows {
		if status != "" && r.Status != status {
			continue
		}
		if r.Status == transaction.StatusReconciled {
			response.Reconciled++
		}
		response.Entries = append(response.Entries, dto.LedgerEntryResponse{
			ID:       r.EntryID,
			Date:     r.Date,
			Amount:   r.Amount,
			Memo:     r.Memo,
			Type:     r.Type,
			Category: r.Category,
			Notes:    r.Notes,
			Status:   r.Status,
		})
	}
	response.Count = len(response.Entries)

	c.JSON(http.StatusOK, response)
}
