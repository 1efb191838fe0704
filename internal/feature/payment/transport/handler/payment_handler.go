// Package handler はpaymentフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"imagegen_backend/internal/api"
	"imagegen_backend/internal/feature/payment/domain/entity"
	"imagegen_backend/internal/feature/payment/usecase"
	"imagegen_backend/internal/platform/http/respond"
	jwtmw "imagegen_backend/internal/platform/jwt"
)

// PaymentUsecase は注文作成・決済検証のユースケースインターフェースを定義します。
type PaymentUsecase interface {
	CreateOrder(ctx context.Context, userID uint, amount int64) (*entity.OrderHandle, error)
	VerifyPayment(ctx context.Context, userID uint, orderID, paymentID, signature string) (*entity.SubscriptionState, error)
	ListPayments(ctx context.Context, userID uint) ([]entity.Payment, error)
}

// PaymentHandler は決済関連のHTTPリクエストを処理します。
type PaymentHandler struct {
	uc PaymentUsecase
	rw *respond.Responder
}

// NewPaymentHandler はPaymentHandlerの新しいインスタンスを生成します。
func NewPaymentHandler(uc PaymentUsecase, rw *respond.Responder) *PaymentHandler {
	return &PaymentHandler{uc: uc, rw: rw}
}

// CreateOrder はサブスクリプション購入用の注文を作成します。
//
// エンドポイント: POST /api/payment/create-order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		h.rw.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	var req api.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create order binding failed", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusBadRequest, "Amount is required", err)
		return
	}

	handle, err := h.uc.CreateOrder(c.Request.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidAmount):
			h.rw.Error(c, http.StatusBadRequest, "Invalid amount. Only 1₹, 2₹, or 3₹ are allowed", err)
		case errors.Is(err, usecase.ErrUserNotFound):
			h.rw.Error(c, http.StatusNotFound, "User not found", err)
		default:
			slog.Error("create order failed", "error", err, "user_id", userID, "amount", req.Amount)
			h.rw.Error(c, http.StatusInternalServerError, "Error creating order", err)
		}
		return
	}

	slog.Info("order created", "user_id", userID, "order_id", handle.OrderID, "amount", handle.Amount)
	c.JSON(http.StatusOK, api.CreateOrderResponse{
		Success: true,
		Message: "Order created successfully",
		Data: api.OrderHandle{
			OrderId:  handle.OrderID,
			Amount:   handle.Amount,
			Currency: handle.Currency,
			KeyId:    handle.KeyID,
		},
	})
}

// VerifyPayment はチェックアウトの署名を検証し、サブスクリプションを延長します。
//
// エンドポイント: POST /api/payment/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		h.rw.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	var req api.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("verify payment binding failed", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusBadRequest, "Missing payment verification details", err)
		return
	}

	state, err := h.uc.VerifyPayment(c.Request.Context(), userID,
		deref(req.RazorpayOrderId), deref(req.RazorpayPaymentId), deref(req.RazorpaySignature))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingPaymentDetails):
			h.rw.Error(c, http.StatusBadRequest, "Missing payment verification details", err)
		case errors.Is(err, usecase.ErrSignatureMismatch):
			slog.Warn("payment signature mismatch", "user_id", userID, "order_id", deref(req.RazorpayOrderId))
			h.rw.Error(c, http.StatusBadRequest, "Invalid payment signature", nil)
		case errors.Is(err, usecase.ErrInvalidAmount):
			slog.Warn("paid amount outside price list", "error", err, "user_id", userID)
			h.rw.Error(c, http.StatusBadRequest, "Invalid payment amount", err)
		case errors.Is(err, usecase.ErrUserNotFound):
			h.rw.Error(c, http.StatusNotFound, "User not found", err)
		case errors.Is(err, usecase.ErrPaymentAlreadyProcessed):
			slog.Warn("payment replay rejected", "user_id", userID, "payment_id", deref(req.RazorpayPaymentId))
			h.rw.Error(c, http.StatusConflict, "Payment already processed", err)
		default:
			slog.Error("verify payment failed", "error", err, "user_id", userID)
			h.rw.Error(c, http.StatusInternalServerError, "Error verifying payment", err)
		}
		return
	}

	slog.Info("subscription extended", "user_id", userID, "payment_id", state.PaymentID, "days_added", state.DaysAdded)
	c.JSON(http.StatusOK, api.VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified and subscription updated successfully",
		Data: api.SubscriptionState{
			PaymentId:          state.PaymentID,
			OrderId:            state.OrderID,
			SubscriptionStatus: state.Status,
			SubscriptionExpiry: state.Expiry,
			DaysAdded:          state.DaysAdded,
		},
	})
}

// ListPayments は認証ユーザーの決済履歴を返します。
//
// エンドポイント: GET /api/payment/history
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		h.rw.Error(c, http.StatusUnauthorized, "Not authorized", nil)
		return
	}

	payments, err := h.uc.ListPayments(c.Request.Context(), userID)
	if err != nil {
		slog.Error("list payments failed", "error", err, "user_id", userID)
		h.rw.Error(c, http.StatusInternalServerError, "Error fetching payments", err)
		return
	}

	out := make([]api.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		out = append(out, api.PaymentRecord{
			PaymentId: p.PaymentID,
			OrderId:   p.OrderID,
			Amount:    p.Amount,
			DaysAdded: p.DaysAdded,
			CreatedAt: p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, api.PaymentHistoryResponse{
		Success: true,
		Message: "Payments fetched successfully",
		Data:    out,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
