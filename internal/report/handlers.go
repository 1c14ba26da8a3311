package report

import (
	"fmt"
	"net/http"

	"github.com/antonminaichev/laundry-orders/internal/logger"
	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/util/render"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		logger.Log.Error("stats failed", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "internal", http.StatusText(http.StatusInternalServerError))
		return
	}
	render.JSON(w, http.StatusOK, st)
}

// Export answers GET /orders/export?start=YYYY-MM-DD&end=YYYY-MM-DD[&format=csv].
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format != "" && format != "json" && format != "csv" {
		render.Error(w, http.StatusBadRequest, "invalid_format", "format must be json or csv")
		return
	}
	dr, err := order.ParseDateRange(q.Get("start"), q.Get("end"), h.svc.Location())
	if err != nil {
		render.Error(w, http.StatusBadRequest, "invalid_date_range", err.Error())
		return
	}
	exp, err := h.svc.Export(r.Context(), dr)
	if err != nil {
		logger.Log.Error("export failed", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "internal", http.StatusText(http.StatusInternalServerError))
		return
	}

	if format == "csv" {
		name := fmt.Sprintf("orders-%s-%s.csv", q.Get("start"), q.Get("end"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.WriteHeader(http.StatusOK)
		if err := WriteCSV(w, exp, h.svc.Location()); err != nil {
			logger.Log.Error("write csv", zap.Error(err))
		}
		return
	}
	render.JSON(w, http.StatusOK, exp)
}
