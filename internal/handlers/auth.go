package handlers

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/service"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	db    *sql.DB
	email *service.MultiProviderEmailService
}

func NewAuthHandler(db *sql.DB, email *service.MultiProviderEmailService) *AuthHandler {
	return &AuthHandler{db: db, email: email}
}

// generateOTP generates a random 6-digit OTP code
func generateOTP() (string, error) {
	max := big.NewInt(999999)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var exists bool
	if err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	cost := config.GetConfig().Security.BCryptCost
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	userID := uuid.New()
	now := time.Now()

	// Pengguna pertama otomatis menjadi admin
	var userCount int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	isAdmin := userCount == 0

	_, err = h.db.Exec(`
		INSERT INTO users (id, email, password_hash, full_name, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, req.Email, string(hashedPassword), req.FullName, isAdmin, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := utils.GenerateJWT(userID, req.Email, isAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data": models.LoginResponse{
			Token: token,
			User: models.UserResponse{
				ID:       userID,
				Email:    req.Email,
				FullName: req.FullName,
				IsAdmin:  isAdmin,
			},
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.db.QueryRow(`
		SELECT id, email, password_hash, full_name, is_admin, created_at, updated_at
		FROM users WHERE email = $1
	`, req.Email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data": models.LoginResponse{
			Token: token,
			User:  user.ToResponse(),
		},
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	err := h.db.QueryRow(`
		SELECT id, email, full_name, is_admin, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Email, &user.FullName, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    user.ToResponse(),
	})
}

// GenerateResetOTP mengirim kode OTP untuk reset password
func (h *AuthHandler) GenerateResetOTP(c *gin.Context) {
	var req models.GenerateOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var fullName string
	err := h.db.QueryRow(`SELECT full_name FROM users WHERE email = $1`, req.Email).Scan(&fullName)
	if err == sql.ErrNoRows {
		// Jangan bocorkan apakah email terdaftar
		c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, an OTP has been sent"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	code, err := generateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate OTP"})
		return
	}

	expiresAt := time.Now().Add(10 * time.Minute)
	_, err = h.db.Exec(`
		INSERT INTO otps (email, code, purpose, expires_at)
		VALUES ($1, $2, 'password_reset', $3)
	`, req.Email, code, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store OTP"})
		return
	}

	if h.email != nil {
		err = h.email.SendOTPEmail(c.Request.Context(), service.OTPEmailData{
			Email:     req.Email,
			Name:      fullName,
			OTPCode:   code,
			ExpiresIn: 10,
		})
		if err != nil {
			log.Printf("AuthHandler: failed to send OTP email: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, an OTP has been sent"})
}

// ResetPasswordWithOTP mengganti password setelah verifikasi OTP
func (h *AuthHandler) ResetPasswordWithOTP(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var otpID uuid.UUID
	err := h.db.QueryRow(`
		SELECT id FROM otps
		WHERE email = $1 AND code = $2 AND purpose = 'password_reset' AND used = false AND expires_at > NOW()
		ORDER BY created_at DESC LIMIT 1
	`, req.Email, req.OTPCode).Scan(&otpID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
		return
	}

	cost := config.GetConfig().Security.BCryptCost
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), cost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if _, err := h.db.Exec(`UPDATE users SET password_hash = $1, updated_at = $2 WHERE email = $3`,
		string(hashedPassword), time.Now(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	if _, err := h.db.Exec(`UPDATE otps SET used = true WHERE id = $1`, otpID); err != nil {
		log.Printf("AuthHandler: failed to mark OTP used: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
