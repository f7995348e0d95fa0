package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pooladgaran/campane-backend/api/controllers"
	"github.com/pooladgaran/campane-backend/api/middleware"
	"github.com/pooladgaran/campane-backend/internal/campaigns"
	"github.com/pooladgaran/campane-backend/internal/orders"
	"github.com/pooladgaran/campane-backend/pkg/config"
	"github.com/pooladgaran/campane-backend/pkg/logger"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config     *config.Config
	Logger     *logger.Logger
	Campaigns  campaigns.Service
	Orders     orders.Service
	ItemEditor *orders.EditCoordinator
	Board      controllers.BoardSubscriber
	Totals     controllers.TotalReader
	Pingers    map[string]controllers.Pinger
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Post("/", controllers.CampaignCreate(deps.Campaigns, logg))
		r.Get("/", controllers.CampaignList(deps.Campaigns, logg))
		r.Get("/{slug}", controllers.CampaignBySlug(deps.Campaigns, logg))
		r.Post("/{campaignID}/end", controllers.CampaignEnd(deps.Campaigns, logg))
		r.Get("/{campaignID}/customers", controllers.CampaignCustomers(deps.Campaigns, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", controllers.OrderCreate(deps.Orders, logg))
		r.Get("/{orderID}", controllers.OrderGet(deps.Orders, logg))
		r.Put("/{orderID}/items", controllers.OrderItemsReplace(deps.Orders, logg))
		r.Patch("/{orderID}/items/{productID}", controllers.OrderItemEdit(deps.ItemEditor, logg))
		r.Post("/{orderID}/submit", controllers.OrderSubmit(deps.Orders, deps.ItemEditor, logg))
	})

	r.Post("/api/v1/quotes", controllers.QuotePreview(deps.Orders, logg))

	r.Route("/api/v1/board/{campaignID}", func(r chi.Router) {
		r.Get("/", controllers.BoardSnapshot(deps.Totals, logg))
		r.Get("/stream", controllers.BoardStream(deps.Board, logg))
	})

	return r
}
