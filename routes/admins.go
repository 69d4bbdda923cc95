package routes

import (
	"net/http"

	"project/controllers/admins"
	"project/middleware"

	"github.com/gorilla/mux"
)

// SetAdminRoutes registers the admin surface. Everything here sits behind
// authentication plus a role check; moderators get the read-only subset.
func SetAdminRoutes(api *mux.Router) {
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AuthMiddleware)

	readOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireModerator(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	// Dashboard and listings are open to moderators as well
	adminRouter.Handle("/dashboard", readOnly(admins.Dashboard)).Methods(http.MethodGet)
	adminRouter.Handle("/users", readOnly(admins.ListUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}", readOnly(admins.GetUser)).Methods(http.MethodGet)
	adminRouter.Handle("/tasks", readOnly(admins.ListTasks)).Methods(http.MethodGet)
	adminRouter.Handle("/payments", readOnly(admins.ListPayments)).Methods(http.MethodGet)
	adminRouter.Handle("/settings", readOnly(admins.GetSettings)).Methods(http.MethodGet)

	// Mutations require the admin role
	adminRouter.Handle("/users/{id:[0-9]+}", adminOnly(admins.UpdateUser)).Methods(http.MethodPut)
	adminRouter.Handle("/users/{id:[0-9]+}", adminOnly(admins.DeactivateUser)).Methods(http.MethodDelete)
	adminRouter.Handle("/tasks", adminOnly(admins.CreateTask)).Methods(http.MethodPost)
	adminRouter.Handle("/tasks/{id:[0-9]+}", adminOnly(admins.UpdateTask)).Methods(http.MethodPut)
	adminRouter.Handle("/tasks/{id:[0-9]+}", adminOnly(admins.DeleteTask)).Methods(http.MethodDelete)
	adminRouter.Handle("/payments/{id:[0-9]+}/status", adminOnly(admins.UpdatePaymentStatus)).Methods(http.MethodPut)
	adminRouter.Handle("/settings", adminOnly(admins.UpdateSettings)).Methods(http.MethodPut)
}
