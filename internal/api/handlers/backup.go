package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/response"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
)

// maxSnapshotBody limits the size of an uploaded backup.
const maxSnapshotBody = 64 << 20

// BackupHandler handles snapshot download and restore.
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// RestoreResponse reports how many records a restore loaded.
type RestoreResponse struct {
	Products     int `json:"products"`
	Transactions int `json:"transactions"`
}

// Download handles GET requests for a JSON snapshot of every product and transaction.
//
// Endpoint: GET /api/backup
// Response: 200 OK with application/json attachment
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.backupService.WriteSnapshot(r.Context(), &buf); err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToExportBackup.Error())
		return
	}

	filename := fmt.Sprintf("parts-shop-backup-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Restore handles POST requests replacing all data with the uploaded snapshot.
// Nothing changes unless the whole snapshot is valid.
//
// Endpoint: POST /api/backup
// Request Body: snapshot JSON ({products: [...], transactions: [...]})
// Response: 200 OK with RestoreResponse
// Error: 400 Bad Request if the snapshot is malformed or has invalid records
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	snap, err := h.backupService.Restore(r.Context(), http.MaxBytesReader(w, r.Body, maxSnapshotBody))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToImportBackup.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, RestoreResponse{
		Products:     len(snap.Products),
		Transactions: len(snap.Transactions),
	})
}
