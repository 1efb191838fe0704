// Package handler はgenerationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"imagegen_backend/internal/api"
	"imagegen_backend/internal/feature/generation/domain/entity"
	"imagegen_backend/internal/feature/generation/usecase"
	"imagegen_backend/internal/platform/http/respond"
	jwtmw "imagegen_backend/internal/platform/jwt"
)

// GenerationUsecase は画像生成・一覧のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type GenerationUsecase interface {
	Generate(ctx context.Context, userID uint, prompt string) (*entity.Image, error)
	ListImages(ctx context.Context, userID uint) ([]entity.Image, error)
}

// GenerationHandler は画像生成・一覧のHTTPリクエストを処理します。
type GenerationHandler struct {
	uc GenerationUsecase
	rw *respond.Responder
}

// NewGenerationHandler はGenerationHandlerの新しいインスタンスを生成します。
func NewGenerationHandler(uc GenerationUsecase, rw *respond.Responder) *GenerationHandler {
	return &GenerationHandler{uc: uc, rw: rw}
}

// Generate はプロンプトから画像を生成します。
//
// エンドポイント: POST /api/generate
// Content-Type: application/json
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		h.rw.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	var req api.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("generate request binding failed", "error", err, "remote_addr", c.ClientIP())
		h.rw.Error(c, http.StatusBadRequest, "A valid prompt of at least 3 characters is required", err)
		return
	}
	var prompt string
	if req.Prompt != nil {
		prompt = *req.Prompt
	}

	img, err := h.uc.Generate(c.Request.Context(), userID, prompt)
	if err != nil {
		h.fail(c, userID, err)
		return
	}

	slog.Info("image generated", "user_id", userID, "image_id", img.ID)
	c.JSON(http.StatusCreated, api.GenerateResponse{
		Success: true,
		Message: "Image generated successfully",
		Data: api.GeneratedImage{
			Id:       int64(img.ID),
			ImageUrl: img.CloudinaryURL,
			Prompt:   img.PromptText,
		},
	})
}

func (h *GenerationHandler) fail(c *gin.Context, userID uint, err error) {
	var upErr *usecase.UpstreamError
	switch {
	case errors.Is(err, usecase.ErrInvalidPrompt):
		h.rw.Error(c, http.StatusBadRequest, "A valid prompt of at least 3 characters is required", err)
	case errors.Is(err, usecase.ErrUserNotFound):
		h.rw.Error(c, http.StatusNotFound, "User not found", err)
	case errors.Is(err, usecase.ErrSubscriptionInactive):
		h.rw.Error(c, http.StatusForbidden, "Subscription inactive", err)
	case errors.Is(err, usecase.ErrContentRejected):
		slog.Warn("generated image rejected", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusUnprocessableEntity, "Generated image was rejected by the content policy", err)
	case errors.Is(err, usecase.ErrStorage):
		slog.Error("image upload failed", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusBadGateway, "Failed to upload image to Cloudinary", err)
	case errors.As(err, &upErr):
		slog.Error("inference API error", "status", upErr.StatusCode, "body", upErr.Body, "user_id", userID)
		h.rw.Error(c, http.StatusInternalServerError, "Error generating image", err)
	default:
		slog.Error("image generation failed", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusInternalServerError, "Error generating image", err)
	}
}

// ListImages は認証ユーザーの画像を新しい順に返します。
//
// エンドポイント: GET /api/images
func (h *GenerationHandler) ListImages(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		h.rw.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	images, err := h.uc.ListImages(c.Request.Context(), userID)
	if err != nil {
		slog.Error("list images failed", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusInternalServerError, "Error fetching images", err)
		return
	}

	out := make([]api.ImageSummary, 0, len(images))
	for _, img := range images {
		out = append(out, api.ImageSummary{
			Id:            int64(img.ID),
			CloudinaryUrl: img.CloudinaryURL,
			PromptText:    img.PromptText,
			CreatedAt:     img.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, api.ImageListResponse{
		Success: true,
		Message: "Images fetched successfully",
		Data:    out,
	})
}
