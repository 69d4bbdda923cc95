package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

// AuthMiddleware is the access gate applied before any protected handler:
// bearer token -> claims -> user lookup -> activity check. The verified
// identity (id, email, role) is attached to the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Access token required"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

		_, claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Session expired, please log in again"})
				return
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
			return
		}

		userID := utils.ClaimsUserID(claims)
		if userID == 0 {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
			return
		}

		// The token may outlive the account: re-check existence and activity.
		var user models.User
		if err := database.DB.Select("id", "email", "role", "is_active").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "User not found or inactive"})
				return
			}
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
			return
		}
		if !user.IsActive {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "User not found or inactive"})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, utils.UserEmailKey, user.Email)
		ctx = context.WithValue(ctx, utils.UserRoleKey, user.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a handler on the authenticated role. Must run after
// AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetUserRole(r)
			if !ok {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Authentication required"})
				return
			}
			if !allowed[role] {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only admins; RequireModerator also admits moderators.
var RequireAdmin = RequireRole(models.RoleAdmin)
var RequireModerator = RequireRole(models.RoleAdmin, models.RoleModerator)
