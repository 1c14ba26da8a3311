package router

import (
	"context"
	"net/http"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/logger"
	"github.com/antonminaichev/laundry-orders/internal/metrics"
	"github.com/antonminaichev/laundry-orders/internal/middleware"
	"github.com/antonminaichev/laundry-orders/internal/order"
	"github.com/antonminaichev/laundry-orders/internal/report"
	"github.com/antonminaichev/laundry-orders/internal/user"
	"github.com/antonminaichev/laundry-orders/internal/util/render"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Users     *user.Handler
	Orders    *order.Handler
	Reports   *report.Handler
	UserRepo  user.UserRepository
	JWTSecret []byte
	// AdminAuth puts staff routes behind a bearer token.
	AdminAuth bool
	Metrics   *metrics.Registry
	Store     Pinger
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.GzipHandler)

	r.Get("/health", health(d.Store))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Mount("/api/admin", d.Users.Routes())

	r.Post("/orders", d.Orders.CreateOrder)
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalJWT(d.JWTSecret, d.UserRepo))
		r.Get("/orders", d.Orders.ListOrders)
		r.Get("/orders/{code}", d.Orders.GetOrder)
	})

	r.Group(func(r chi.Router) {
		if d.AdminAuth {
			r.Use(middleware.JWTMiddleware(d.JWTSecret, d.UserRepo))
		}
		r.Patch("/orders", d.Orders.PatchOrder)
		r.Get("/orders/export", d.Reports.Export)
		r.Get("/stats", d.Reports.Stats)
	})

	return r
}

func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Log.Warn("health check failed", zap.Error(err))
			render.Error(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
