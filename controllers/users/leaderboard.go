package users

import (
	"net/http"

	"project/database"
	"project/models"
	"project/utils"
)

type leaderboardEntry struct {
	Rank        int     `json:"rank"`
	Username    string  `json:"username"`
	Avatar      *string `json:"avatar,omitempty"`
	TotalEarned float64 `json:"total_earned"`
}

// Leaderboard ranks active users by total earnings. Ties on total_earned are
// broken by account age, oldest first, so the ordering is stable across pages.
func Leaderboard(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := utils.ParsePagination(r)

	var total int64
	if err := database.DB.Model(&models.User{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var users []models.User
	if err := database.DB.Model(&models.User{}).
		Select("id", "username", "avatar", "total_earned", "created_at").
		Where("is_active = ?", true).
		Order("total_earned DESC, created_at ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	entries := make([]leaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, leaderboardEntry{
			Rank:        offset + i + 1,
			Username:    u.Username,
			Avatar:      u.Avatar,
			TotalEarned: u.TotalEarned,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"leaderboard": entries,
			"pagination":  utils.Pagination{Page: page, Limit: limit, Total: total},
		},
	})
}
