package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/ecofinds-backend/api/controllers"
	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	svc marketplace.Service,
	noticeDrainer controllers.NoticeDrainer,
	pingers map[string]controllers.Pinger,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", controllers.AuthSignup(svc, logg))
			r.Post("/login", controllers.AuthLogin(svc, logg))
			r.Post("/logout", controllers.AuthLogout(svc))
		})

		r.Get("/account", controllers.AccountGet(svc, logg))
		r.Patch("/account", controllers.AccountUpdate(svc, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svc, logg))
			r.Post("/", controllers.ProductCreate(svc, logg))
			r.Get("/categories", controllers.ProductCategories(svc))
			r.Get("/mine", controllers.ProductListMine(svc, logg))
			r.Get("/{productId}", controllers.ProductGet(svc, logg))
			r.Put("/{productId}", controllers.ProductUpdate(svc, logg))
			r.Delete("/{productId}", controllers.ProductDelete(svc, logg))
		})

		r.Get("/users/{userId}", controllers.UserGet(svc, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svc))
			r.Delete("/", controllers.CartClear(svc, logg))
			r.Post("/items", controllers.CartAddItem(svc, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(svc, logg))
		})

		r.Post("/checkout", controllers.Checkout(svc, logg))
		r.Get("/purchases", controllers.PurchaseList(svc, logg))
		r.Get("/notices", controllers.NoticeDrain(noticeDrainer))
	})

	return r
}
