// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"imagegen_backend/internal/api"
	"imagegen_backend/internal/feature/auth/domain/entity"
	"imagegen_backend/internal/feature/auth/usecase"
	"imagegen_backend/internal/platform/http/respond"
	jwtmw "imagegen_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は新規ユーザーを登録し、ログイン済みのセッションを返します。
	Signup(ctx context.Context, email, password string) (*usecase.Session, error)
	// Login はユーザーを認証し、成功時にセッションを返します。
	Login(ctx context.Context, email, password string) (*usecase.Session, error)
	// Profile は指定ユーザーの最新状態を返します。
	Profile(ctx context.Context, userID uint) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
	rw   *respond.Responder
	now  func() time.Time
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, rw *respond.Responder) *AuthHandler {
	return &AuthHandler{auth: auth, rw: rw, now: time.Now}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400
// - メール重複時は409
// - 成功時はトークンとユーザー情報付きで201
func (h *AuthHandler) Signup(c *gin.Context) {
	var req api.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		h.rw.Error(c, http.StatusBadRequest, "Please provide a valid email and a password of at least 8 characters", err)
		return
	}
	sess, err := h.auth.Signup(c.Request.Context(), string(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrWeakPassword):
			h.rw.Error(c, http.StatusBadRequest, "Password must be at least 8 characters", err)
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			// ユーザー列挙攻撃の観点から詳細はログのみに残す
			slog.Warn("signup failed", "error", err, "remote_addr", c.ClientIP())
			h.rw.Error(c, http.StatusConflict, "User already exists", err)
		default:
			slog.Error("signup failed", "error", err, "remote_addr", c.ClientIP())
			h.rw.Error(c, http.StatusInternalServerError, "Server error during signup", err)
		}
		return
	}
	slog.Info("user signup successful", "user_id", sess.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		Data:    api.AuthPayload{Token: sess.Token, User: h.profile(sess.User)},
	})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400
// - 認証失敗時は401
// - 認証成功時はJWTトークン付きで200
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		h.rw.Error(c, http.StatusBadRequest, "Please provide email and password", err)
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), string(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
			h.rw.Error(c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
		h.rw.Error(c, http.StatusInternalServerError, "Server error during login", err)
		return
	}
	slog.Info("user login successful", "user_id", sess.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.AuthResponse{
		Success: true,
		Message: "Login successful",
		Data:    api.AuthPayload{Token: sess.Token, User: h.profile(sess.User)},
	})
}

// Me は認証済みユーザーのプロフィールとサブスクリプション状態を返します。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		h.rw.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}
	user, err := h.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			h.rw.Error(c, http.StatusNotFound, "User not found", err)
			return
		}
		slog.Error("profile lookup failed", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusInternalServerError, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, api.ProfileResponse{
		Success: true,
		Message: "Profile fetched",
		Data:    h.profile(user),
	})
}

func (h *AuthHandler) profile(u *entity.User) api.Profile {
	return api.Profile{
		Id:                 int64(u.ID),
		Email:              openapi_types.Email(u.Email),
		SubscriptionStatus: u.SubscriptionStatus,
		SubscriptionExpiry: u.SubscriptionExpiry,
		SubscriptionActive: u.HasActiveSubscription(h.now()),
	}
}
