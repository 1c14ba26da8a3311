package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/antonminaichev/laundry-orders/internal/logger"
	"github.com/antonminaichev/laundry-orders/internal/middleware"
	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/util/render"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// createOrderReq accepts either a nested category or the flat form fields.
type createOrderReq struct {
	CustomerName string            `json:"customer_name"`
	Phone        string            `json:"phone"`
	Note         string            `json:"note"`
	Category     *order.Category   `json:"category"`
	Kind         order.Kind        `json:"kind"`
	ServiceType  order.ServiceType `json:"service_type"`
	WeightKg     float64           `json:"weight_kg"`
	ItemKind     string            `json:"item_kind"`
	UnitPrice    *int64            `json:"unit_price"`
	Quantity     float64           `json:"quantity"`
}

func (req createOrderReq) category() order.Category {
	if req.Category != nil {
		return *req.Category
	}
	kind := req.Kind
	if kind == "" {
		kind = order.KindByWeight
		if req.ItemKind != "" || req.Quantity != 0 {
			kind = order.KindByUnit
		}
	}
	if kind == order.KindByUnit {
		return order.Category{Kind: kind, ByUnit: &order.ByUnit{
			ItemKind:  req.ItemKind,
			UnitPrice: req.UnitPrice,
			Quantity:  req.Quantity,
		}}
	}
	return order.Category{Kind: kind, ByWeight: &order.ByWeight{
		ServiceType: req.ServiceType,
		WeightKg:    req.WeightKg,
	}}
}

type patchOrderReq struct {
	Code string `json:"code"`
	order.Patch
}

// publicOrder hides contact and price details from anonymous callers.
type publicOrder struct {
	order.Order
	Phone *string `json:"phone,omitempty"`
	Price *int64  `json:"price,omitempty"`
}

func view(o order.Order, admin, showPrice bool) publicOrder {
	v := publicOrder{Order: o}
	if admin {
		v.Phone = &o.Phone
		if o.Phone == "" {
			v.Phone = nil
		}
	}
	if admin || showPrice {
		v.Price = &o.Price
	}
	return v
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	o, err := h.svc.CreateOrder(r.Context(), CreateRequest{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Note:         req.Note,
		Category:     req.category(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	render.JSON(w, http.StatusOK, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			render.Error(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	orders, err := h.svc.ListOrders(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	admin := middleware.IsAdmin(r.Context())
	out := make([]publicOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, view(o, admin, false))
	}
	render.JSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.FindOrder(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	render.JSON(w, http.StatusOK, view(*o, middleware.IsAdmin(r.Context()), true))
}

func (h *Handler) PatchOrder(w http.ResponseWriter, r *http.Request) {
	var req patchOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	o, err := h.svc.UpdateFields(r.Context(), req.Code, req.Patch)
	if err != nil {
		writeError(w, err)
		return
	}
	render.JSON(w, http.StatusOK, o)
}

func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		render.FieldErrors(w, http.StatusBadRequest, "validation_failed", "request has invalid fields", verr.Fields)
	case errors.Is(err, order.ErrNotFound):
		render.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, order.ErrDuplicateCode):
		render.Error(w, http.StatusConflict, "duplicate_code", err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		render.Error(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		logger.Log.Error("order request failed", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "internal", http.StatusText(http.StatusInternalServerError))
	}
}
