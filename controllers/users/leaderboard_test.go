package users

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"project/models"
)

func TestLeaderboardOrdering(t *testing.T) {
	db := setupTestDB(t)
	low := createTestUser(t, db, "low@example.com", 0)
	high := createTestUser(t, db, "high@example.com", 0)
	mid := createTestUser(t, db, "mid@example.com", 0)
	inactive := createTestUser(t, db, "gone@example.com", 0)

	db.Model(low).Update("total_earned", 5)
	db.Model(high).Update("total_earned", 50)
	db.Model(mid).Update("total_earned", 20)
	db.Model(inactive).Updates(map[string]interface{}{"total_earned": 100, "is_active": false})

	req := authedRequest(t, http.MethodGet, "/api/leaderboard", nil, low)
	rec := httptest.NewRecorder()
	Leaderboard(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	entries := resp.Data["leaderboard"].([]interface{})
	if len(entries) != 3 {
		t.Fatalf("inactive users must be excluded, got %d entries", len(entries))
	}

	wantOrder := []string{"high", "mid", "low"}
	for i, raw := range entries {
		entry := raw.(map[string]interface{})
		if got := entry["username"].(string); got != wantOrder[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantOrder[i], got)
		}
		if rank := int(entry["rank"].(float64)); rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, rank)
		}
	}
}

func TestLeaderboardPagination(t *testing.T) {
	db := setupTestDB(t)
	users := make([]*models.User, 0, 5)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"} {
		users = append(users, createTestUser(t, db, email, 0))
	}
	for i, u := range users {
		db.Model(u).Update("total_earned", float64(50-i*10))
	}

	req := authedRequest(t, http.MethodGet, "/api/leaderboard?page=2&limit=2", nil, users[0])
	rec := httptest.NewRecorder()
	Leaderboard(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	entries := resp.Data["leaderboard"].([]interface{})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries on page 2, got %d", len(entries))
	}
	first := entries[0].(map[string]interface{})
	if rank := int(first["rank"].(float64)); rank != 3 {
		t.Errorf("page 2 should start at rank 3, got %d", rank)
	}
}
