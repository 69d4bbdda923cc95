package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"project/database"
	"project/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	dsn := fmt.Sprintf("file:auth_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Payment{},
		&models.Notification{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db
	return db
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Error   string                 `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)

	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp.Data["access_token"] == "" || resp.Data["refresh_token"] == "" {
		t.Error("expected token pair in response")
	}

	var user models.User
	if err := db.Where("email = ?", "alice@example.com").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.ReferralCode == "" {
		t.Error("new user must get a referral code")
	}
	if user.Role != models.RoleUser {
		t.Errorf("new users must start with the user role, got %s", user.Role)
	}
	if user.Password == "secret123" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupTestDB(t)

	body := RegisterRequest{Email: "bob@example.com", Username: "bob", Password: "secret123"}
	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register failed: %d", rec.Code)
	}

	body.Username = "bob2"
	rec = httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", body))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate email, got %d", rec.Code)
	}
}

func TestRegisterInvalidInput(t *testing.T) {
	setupTestDB(t)

	cases := []RegisterRequest{
		{Email: "not-an-email", Username: "carol", Password: "secret123"},
		{Email: "carol@example.com", Username: "c", Password: "secret123"},
		{Email: "carol@example.com", Username: "carol", Password: "short"},
	}
	for i, c := range cases {
		rec := httptest.NewRecorder()
		RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", c))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestRegisterWithReferral(t *testing.T) {
	db := setupTestDB(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	referrer := models.User{
		Email:        "ref@example.com",
		Username:     "referrer",
		Password:     string(hashed),
		Role:         models.RoleUser,
		IsActive:     true,
		ReferralCode: "FRIEND01",
	}
	if err := db.Create(&referrer).Error; err != nil {
		t.Fatalf("seed referrer: %v", err)
	}
	setting, err := models.GetSetting(db)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	db.Model(setting).Update("referral_bonus", 2)

	code := "FRIEND01"
	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:        "dave@example.com",
		Username:     "dave",
		Password:     "secret123",
		ReferralCode: &code,
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var freshRef models.User
	db.First(&freshRef, referrer.ID)
	if freshRef.ReferralCount != 1 {
		t.Errorf("expected referral_count 1, got %d", freshRef.ReferralCount)
	}
	if freshRef.Balance != 2 || freshRef.TotalEarned != 2 {
		t.Errorf("expected referral bonus credited, got balance %v earned %v", freshRef.Balance, freshRef.TotalEarned)
	}

	var bonus models.Payment
	if err := db.Where("user_id = ? AND type = ?", referrer.ID, models.PaymentTypeReferral).First(&bonus).Error; err != nil {
		t.Errorf("expected referral payment row: %v", err)
	}

	var newUser models.User
	db.Where("email = ?", "dave@example.com").First(&newUser)
	if newUser.ReferredBy == nil || *newUser.ReferredBy != referrer.ID {
		t.Error("new user must carry referred_by")
	}
}

func TestRegisterClosedPlatform(t *testing.T) {
	db := setupTestDB(t)
	setting, err := models.GetSetting(db)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}

	body := RegisterRequest{Email: "kate@example.com", Username: "kate", Password: "secret123"}

	db.Model(setting).Update("maintenance_mode", true)
	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", body))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 during maintenance, got %d", rec.Code)
	}

	db.Model(setting).Updates(map[string]interface{}{"maintenance_mode": false, "registration_enabled": false})
	rec = httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", body))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with registration disabled, got %d", rec.Code)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("no account must be created, got %d", count)
	}
}

func TestRegisterUnknownReferralCode(t *testing.T) {
	setupTestDB(t)

	code := "NOSUCH99"
	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:        "erin@example.com",
		Username:     "erin",
		Password:     "secret123",
		ReferralCode: &code,
	}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown code, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	user := models.User{
		Email:        "frank@example.com",
		Username:     "frank",
		Password:     string(hashed),
		Role:         models.RoleUser,
		IsActive:     true,
		ReferralCode: "FRANK001",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rec := httptest.NewRecorder()
	LoginHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "frank@example.com",
		Password: "secret123",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp.Data["access_token"] == "" {
		t.Error("expected access token")
	}

	var fresh models.User
	db.First(&fresh, user.ID)
	if fresh.LastLogin == nil {
		t.Error("login must record last_login")
	}
	if fresh.LoginStreak != 1 {
		t.Errorf("first login should start the streak, got %d", fresh.LoginStreak)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	user := models.User{
		Email:        "grace@example.com",
		Username:     "grace",
		Password:     string(hashed),
		Role:         models.RoleUser,
		IsActive:     true,
		ReferralCode: "GRACE001",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rec := httptest.NewRecorder()
	LoginHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "grace@example.com",
		Password: "wrongpass",
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	db := setupTestDB(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	user := models.User{
		Email:        "heidi@example.com",
		Username:     "heidi",
		Password:     string(hashed),
		Role:         models.RoleUser,
		IsActive:     false,
		ReferralCode: "HEIDI001",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rec := httptest.NewRecorder()
	LoginHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "heidi@example.com",
		Password: "secret123",
	}))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for inactive account, got %d", rec.Code)
	}
}

func TestRefreshRotation(t *testing.T) {
	db := setupTestDB(t)

	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "ivan@example.com",
		Username: "ivan",
		Password: "secret123",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}
	oldToken := decodeResponse(t, rec).Data["refresh_token"].(string)

	rec = httptest.NewRecorder()
	RefreshHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/refresh", RefreshRequest{RefreshToken: oldToken}))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d: %s", rec.Code, rec.Body.String())
	}
	newToken := decodeResponse(t, rec).Data["refresh_token"].(string)
	if newToken == oldToken {
		t.Error("refresh must rotate the token")
	}

	var old models.RefreshToken
	db.Where("id = ?", oldToken).First(&old)
	if !old.Revoked {
		t.Error("old refresh token must be revoked")
	}

	// replaying the old token must fail
	rec = httptest.NewRecorder()
	RefreshHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/refresh", RefreshRequest{RefreshToken: oldToken}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on replay, got %d", rec.Code)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := setupTestDB(t)

	rec := httptest.NewRecorder()
	RegisterHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    "judy@example.com",
		Username: "judy",
		Password: "secret123",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}
	token := decodeResponse(t, rec).Data["refresh_token"].(string)

	rec = httptest.NewRecorder()
	LogoutHandler(rec, jsonRequest(t, http.MethodPost, "/api/auth/logout", LogoutRequest{RefreshToken: token}))
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rec.Code)
	}

	var rt models.RefreshToken
	db.Where("id = ?", token).First(&rt)
	if !rt.Revoked {
		t.Error("logout must revoke the refresh token")
	}
}
