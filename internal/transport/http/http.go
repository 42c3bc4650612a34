package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/evoshop/storefront/internal/service/models/cartline"
	"github.com/evoshop/storefront/internal/service/models/order"
	"github.com/evoshop/storefront/internal/service/models/product"
	"github.com/evoshop/storefront/internal/service/services/cartsvc"
	"github.com/evoshop/storefront/internal/service/services/checkoutsvc"
	additem "github.com/evoshop/storefront/internal/transport/http/add_item"
	getcart "github.com/evoshop/storefront/internal/transport/http/get_cart"
	"github.com/evoshop/storefront/internal/transport/http/identity"
	listorders "github.com/evoshop/storefront/internal/transport/http/list_orders"
	listproducts "github.com/evoshop/storefront/internal/transport/http/list_products"
	placeorder "github.com/evoshop/storefront/internal/transport/http/place_order"
	removeitem "github.com/evoshop/storefront/internal/transport/http/remove_item"
	selectall "github.com/evoshop/storefront/internal/transport/http/select_all"
	"github.com/evoshop/storefront/internal/transport/http/session"
	toggleselection "github.com/evoshop/storefront/internal/transport/http/toggle_selection"
	updatequantity "github.com/evoshop/storefront/internal/transport/http/update_quantity"
	"github.com/evoshop/storefront/pkg/http/middleware/trace"
	"github.com/evoshop/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type cartService interface {
	StartSession(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error)
	EndSession(userID uuid.UUID)
	Refresh(ctx context.Context, userID uuid.UUID) (*cartsvc.CartView, error)
	AddOrIncrement(ctx context.Context, userID uuid.UUID, productID int64, size string, delta int) (*cartsvc.CartView, error)
	SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, size string, quantity int) (*cartsvc.CartView, error)
	Remove(ctx context.Context, userID uuid.UUID, productID int64, size string) (*cartsvc.CartView, error)
	ToggleSelection(userID uuid.UUID, key cartline.Key) (*cartsvc.CartView, error)
	SelectAll(userID uuid.UUID, flag bool) (*cartsvc.CartView, error)
	Selection(userID uuid.UUID) ([]cartline.CartLine, error)
}

type checkoutService interface {
	Place(
		ctx context.Context,
		userID uuid.UUID,
		selection []cartline.CartLine,
		totalCents int64,
		shippingAddress string,
		paymentMethod string,
	) (*checkoutsvc.Receipt, error)
	History(ctx context.Context, userID uuid.UUID, page int, pageSize int) ([]order.Order, error)
}

type catalogService interface {
	ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	carts     cartService
	checkouts checkoutService
	catalog   catalogService
}

func NewHTTPTransport(carts cartService, checkouts checkoutService, catalog catalogService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:    server,
		router:    router,
		carts:     carts,
		checkouts: checkouts,
		catalog:   catalog,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport. Everything under
// /api except the catalog requires the identity header.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)

		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware)

			r.Post("/session", h.startSession)
			r.Delete("/session", h.endSession)

			r.Get("/cart", h.getCart)
			r.Post("/cart/items", h.addItem)
			r.Put("/cart/items", h.updateQuantity)
			r.Delete("/cart/items", h.removeItem)
			r.Post("/cart/selection", h.toggleSelection)
			r.Put("/cart/selection", h.selectAll)

			r.Post("/orders", h.placeOrder)
			r.Get("/orders", h.listOrders)
		})
	})
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	listproducts.ListProducts(w, r, h.catalog)
}

func (h *HTTPTransport) startSession(w http.ResponseWriter, r *http.Request) {
	session.Start(w, r, h.carts)
}

func (h *HTTPTransport) endSession(w http.ResponseWriter, r *http.Request) {
	session.End(w, r, h.carts)
}

func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	getcart.GetCart(w, r, h.carts)
}

func (h *HTTPTransport) addItem(w http.ResponseWriter, r *http.Request) {
	additem.AddItem(w, r, h.carts)
}

func (h *HTTPTransport) updateQuantity(w http.ResponseWriter, r *http.Request) {
	updatequantity.UpdateQuantity(w, r, h.carts)
}

func (h *HTTPTransport) removeItem(w http.ResponseWriter, r *http.Request) {
	removeitem.RemoveItem(w, r, h.carts)
}

func (h *HTTPTransport) toggleSelection(w http.ResponseWriter, r *http.Request) {
	toggleselection.ToggleSelection(w, r, h.carts)
}

func (h *HTTPTransport) selectAll(w http.ResponseWriter, r *http.Request) {
	selectall.SelectAll(w, r, h.carts)
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	placeorder.PlaceOrder(w, r, h.carts, h.checkouts)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.checkouts)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
