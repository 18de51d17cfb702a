package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/printshop/internal/api/middleware"
	"github.com/example/printshop/internal/auth"
)

// RouterConfig collects everything the HTTP surface needs
type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	ChatHandlers *ChatHandlers
	JWTService   *auth.JWTService
	WebDir       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(cfg.JWTService)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JWTService)
	requireOwner := func(h http.Handler) http.Handler {
		return requireAuth(middleware.RequireRole(auth.RoleOwner)(h))
	}

	// Static files (web UI)
	if cfg.WebDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.WebDir)))
	}

	// Auth
	mux.HandleFunc("/auth/register", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.AuthHandlers.Register,
	}))
	mux.HandleFunc("/auth/login", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.AuthHandlers.Login,
	}))
	mux.HandleFunc("/auth/refresh", methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.AuthHandlers.Refresh,
	}))
	mux.Handle("/auth/logout", optionalAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.AuthHandlers.Logout,
	})))
	mux.Handle("/auth/me", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: cfg.AuthHandlers.Me,
	})))
	mux.Handle("/auth/password", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.AuthHandlers.ChangePassword,
	})))

	// Shops
	mux.Handle("/shops", methodRouter(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(cfg.Handlers.GetShops),
		http.MethodPost: requireOwner(http.HandlerFunc(cfg.Handlers.CreateShop)),
	}))
	mux.Handle("/shops/", methodRouterFn(func(r *http.Request) http.Handler {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/estimates") && r.Method == http.MethodPut:
			return requireOwner(http.HandlerFunc(cfg.Handlers.SetShopTimeEstimates))
		case strings.HasSuffix(path, "/return-policy") && r.Method == http.MethodPut:
			return requireOwner(http.HandlerFunc(cfg.Handlers.SetShopReturnPolicy))
		case r.Method == http.MethodPut:
			return requireOwner(http.HandlerFunc(cfg.Handlers.UpdateShop))
		case r.Method == http.MethodGet:
			return http.HandlerFunc(cfg.Handlers.GetShop)
		}
		return nil
	}))

	// Services
	mux.Handle("/services", methodRouter(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(cfg.Handlers.GetServices),
		http.MethodPost: requireOwner(http.HandlerFunc(cfg.Handlers.CreateService)),
	}))
	mux.Handle("/services/", methodRouter(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(cfg.Handlers.GetService),
		http.MethodPut:    requireOwner(http.HandlerFunc(cfg.Handlers.UpdateService)),
		http.MethodDelete: requireOwner(http.HandlerFunc(cfg.Handlers.DeleteService)),
	}))

	// Cart
	mux.Handle("/cart", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: cfg.Handlers.GetCart,
	})))
	mux.Handle("/cart/items", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.Handlers.AddToCart,
	})))
	mux.Handle("/cart/items/", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodDelete: cfg.Handlers.RemoveFromCart,
	})))

	// Orders
	mux.Handle("/orders", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.Handlers.PlaceOrder,
	})))
	mux.Handle("/orders/mine", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: cfg.Handlers.GetMyOrders,
	})))
	mux.Handle("/orders/shop/", requireOwner(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: cfg.Handlers.GetShopOrders,
	})))
	mux.Handle("/orders/pickup/", methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: cfg.Handlers.ConfirmPickup,
	}))
	mux.Handle("/orders/", requireAuth(methodRouterFn(func(r *http.Request) http.Handler {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/status") && r.Method == http.MethodPatch:
			return middleware.RequireRole(auth.RoleOwner)(http.HandlerFunc(cfg.Handlers.UpdateOrderStatus))
		case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
			return http.HandlerFunc(cfg.Handlers.CancelOrder)
		case strings.HasSuffix(path, "/return-request") && r.Method == http.MethodPost:
			return http.HandlerFunc(cfg.Handlers.SubmitReturnRequest)
		case strings.HasSuffix(path, "/return-request") && r.Method == http.MethodPatch:
			return middleware.RequireRole(auth.RoleOwner)(http.HandlerFunc(cfg.Handlers.DecideReturnRequest))
		case r.Method == http.MethodGet:
			return http.HandlerFunc(cfg.Handlers.GetOrder)
		}
		return nil
	})))

	// Reviews
	mux.Handle("/reviews/shop/", methodRouter(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(cfg.Handlers.GetShopReviews),
		http.MethodPost: requireAuth(http.HandlerFunc(cfg.Handlers.PostReview)),
	}))
	mux.Handle("/reviews/", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodDelete: cfg.Handlers.DeleteReview,
	})))

	// Designs
	mux.Handle("/designs", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodPost: cfg.Handlers.SaveDesign,
	})))
	mux.Handle("/designs/mine", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: cfg.Handlers.GetMyDesigns,
	})))
	mux.Handle("/designs/", requireAuth(methodHandler(map[string]http.HandlerFunc{
		http.MethodDelete: cfg.Handlers.DeleteDesign,
	})))

	// Inventory
	mux.Handle("/inventory/", requireOwner(methodHandler(map[string]http.HandlerFunc{
		http.MethodGet: cfg.Handlers.GetInventory,
	})))

	// Chat
	if cfg.ChatHandlers != nil {
		mux.Handle("/chat/ws", requireAuth(http.HandlerFunc(cfg.ChatHandlers.ServeWS)))
		mux.Handle("/chat/conversations", requireAuth(methodHandler(map[string]http.HandlerFunc{
			http.MethodGet: cfg.ChatHandlers.GetConversations,
		})))
		mux.Handle("/chat/messages/", requireAuth(methodHandler(map[string]http.HandlerFunc{
			http.MethodGet: cfg.ChatHandlers.GetMessages,
		})))
	}

	return withLogging(mux)
}

func methodHandler(routes map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := routes[r.Method]; ok {
			handler(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func methodRouter(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := routes[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}

func methodRouterFn(resolve func(r *http.Request) http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler := resolve(r); handler != nil {
			handler.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
