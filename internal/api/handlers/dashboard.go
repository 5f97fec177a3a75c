package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/aggregate"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/response"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
)

// streamHeartbeat is how often an idle dashboard stream sends a comment line so proxies
// keep the connection open.
const streamHeartbeat = 25 * time.Second

// DashboardHandler serves the aggregated shop overview.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	currencySymbol   string
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler. Money values in the summary cards
// are rendered with currencySymbol.
func NewDashboardHandler(dashboardService *service.DashboardService, currencySymbol string, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{
		dashboardService: dashboardService,
		currencySymbol:   currencySymbol,
		logger:           logger,
	}
}

func (h *DashboardHandler) withCards(d model.Dashboard) model.Dashboard {
	d.Cards = aggregate.FormatCards(d.Summary, h.currencySymbol)
	return d
}

// Dashboard handles GET requests for the current overview.
//
// Endpoint: GET /api/dashboard
// Response: 200 OK with Dashboard
// Error: 500 Internal Server Error if the collections cannot be loaded
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveDashboard.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, h.withCards(d))
}

// Stream handles GET requests for a live dashboard as Server-Sent Events. A "dashboard"
// event is sent immediately and after every change to products or transactions, until
// the client disconnects.
//
// Endpoint: GET /api/dashboard/stream
// Response: 200 OK text/event-stream
func (h *DashboardHandler) Stream(w http.ResponseWriter, r *http.Request) {
	// Holds at most the latest dashboard; older undelivered ones are dropped.
	updates := make(chan model.Dashboard, 1)
	stop, err := h.dashboardService.Watch(r.Context(), func(d model.Dashboard) {
		for {
			select {
			case updates <- d:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveDashboard.Error())
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// The server write timeout would otherwise cut the stream.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})
	if err := rc.Flush(); err != nil {
		h.logger.Error("dashboard stream cannot flush", zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case d := <-updates:
			payload, err := json.Marshal(h.withCards(d))
			if err != nil {
				h.logger.Error("failed to encode dashboard event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", payload); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
