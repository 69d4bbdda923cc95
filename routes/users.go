package routes

import (
	"net/http"
	"time"

	"project/controllers/auth"
	"project/controllers/users"
	"project/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers authentication and user-facing routes on the given
// subrouter.
func UsersRoutes(api *mux.Router) {
	// Rate limiter login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter session: 120 reads, 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	authed := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(h))
	}

	// Register & Login
	api.Handle("/auth/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/auth/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/auth/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/auth/logout", authed(auth.LogoutHandler)).Methods(http.MethodPost)
	api.Handle("/auth/me", authed(users.GetProfile)).Methods(http.MethodGet)

	// Profile
	api.Handle("/users/profile", authed(users.GetProfile)).Methods(http.MethodGet)
	api.Handle("/users/profile", authed(users.UpdateProfile)).Methods(http.MethodPut)
	api.Handle("/users/profile/avatar", authed(users.UploadAvatar)).Methods(http.MethodPost)

	// Tasks: browsing is public, completing needs an account
	api.Handle("/tasks", userLimiter.Middleware(http.HandlerFunc(users.ListTasks))).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", userLimiter.Middleware(http.HandlerFunc(users.GetTask))).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/complete", authed(users.CompleteTask)).Methods(http.MethodPost)
	api.Handle("/users/completions", authed(users.ListCompletions)).Methods(http.MethodGet)

	// Payments
	api.Handle("/payments", authed(users.ListPayments)).Methods(http.MethodGet)
	api.Handle("/payments/withdraw", authed(users.Withdraw)).Methods(http.MethodPost)
	api.Handle("/payments/deposit", authed(users.Deposit)).Methods(http.MethodPost)

	// Leaderboard is public
	api.Handle("/users/leaderboard", userLimiter.Middleware(http.HandlerFunc(users.Leaderboard))).Methods(http.MethodGet)

	// Notifications
	api.Handle("/notifications", authed(users.ListNotifications)).Methods(http.MethodGet)
	api.Handle("/notifications/{id:[0-9]+}/read", authed(users.MarkNotificationRead)).Methods(http.MethodPut)
	api.Handle("/notifications/read-all", authed(users.MarkAllNotificationsRead)).Methods(http.MethodPut)
}
