package user

import (
	"encoding/json"
	"net/http"

	"github.com/antonminaichev/laundry-orders/internal/util/render"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	return r
}

type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string `json:"token"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	token, err := h.svc.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		render.Error(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	render.JSON(w, http.StatusOK, loginResp{Token: token})
}
