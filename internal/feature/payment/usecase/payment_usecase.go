package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	authentity "imagegen_backend/internal/feature/auth/domain/entity"
	"imagegen_backend/internal/feature/payment/domain/entity"
)

// maxActivateAttempts は楽観ロック競合時の最大試行回数です。
const maxActivateAttempts = 3

// Payment result labels reported to the Observer.
const (
	ResultSuccess           = "success"
	ResultInvalid           = "invalid"
	ResultSignatureMismatch = "signature_mismatch"
	ResultReplay            = "replay"
	ResultGatewayError      = "gateway_error"
	ResultError             = "error"
)

// UserReader はユーザーの現在のサブスクリプション状態を読み込みます。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type UserReader interface {
	FindByID(ctx context.Context, id uint) (*authentity.User, error)
}

// Gateway は決済ゲートウェイの注文APIです。
type Gateway interface {
	CreateOrder(ctx context.Context, req entity.OrderRequest) (*entity.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*entity.Order, error)
}

// SubscriptionRepository はサブスクリプション更新と決済記録を1トランザクションで永続化します。
type SubscriptionRepository interface {
	// Activate は users.version が expectedVersion の場合のみ status=active, expiry を書き込み、
	// payment を記録します。version 不一致は ErrVersionConflict、
	// 記録済みの payment id は ErrPaymentAlreadyProcessed を返します。
	Activate(ctx context.Context, userID uint, expectedVersion int64, expiry time.Time, payment *entity.Payment) error
	// ListByUser は検証済み決済を新しい順に返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Payment, error)
}

// UserLocker はユーザー単位の排他ロックです。
type UserLocker interface {
	Lock(ctx context.Context, userID uint) (unlock func(), err error)
}

// Observer は決済検証の結果を計測します。
type Observer interface {
	ObservePayment(result string, days int)
}

type nopObserver struct{}

func (nopObserver) ObservePayment(string, int) {}

// Config は決済ユースケースの設定です。
type Config struct {
	KeyID     string
	KeySecret string
	Currency  string
}

// Option は paymentUsecase の任意設定です。
type Option func(*paymentUsecase)

// WithClock は現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(u *paymentUsecase) { u.now = now }
}

// WithObserver は検証結果の計測先を設定します。
func WithObserver(o Observer) Option {
	return func(u *paymentUsecase) { u.observer = o }
}

// paymentUsecase は注文作成と決済検証のビジネスロジックを提供します。
type paymentUsecase struct {
	cfg      Config
	users    UserReader
	gateway  Gateway
	subs     SubscriptionRepository
	locker   UserLocker
	observer Observer
	now      func() time.Time
}

// NewPaymentUsecase はpaymentUsecaseの新しいインスタンスを生成します。
func NewPaymentUsecase(cfg Config, users UserReader, gateway Gateway, subs SubscriptionRepository, locker UserLocker, opts ...Option) *paymentUsecase {
	u := &paymentUsecase{
		cfg:      cfg,
		users:    users,
		gateway:  gateway,
		subs:     subs,
		locker:   locker,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateOrder は価格表にある金額でゲートウェイ注文を作成します。
func (u *paymentUsecase) CreateOrder(ctx context.Context, userID uint, amount int64) (*entity.OrderHandle, error) {
	if _, ok := entity.PlanForAmount(amount); !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	order, err := u.gateway.CreateOrder(ctx, entity.OrderRequest{
		Amount:   amount,
		Currency: u.cfg.Currency,
		Receipt:  fmt.Sprintf("receipt_%d", u.now().UnixMilli()),
		Notes: map[string]string{
			"userId": strconv.FormatUint(uint64(user.ID), 10),
			"email":  user.Email,
		},
	})
	if err != nil {
		return nil, classify(ErrGateway, err)
	}

	currency := order.Currency
	if currency == "" {
		currency = u.cfg.Currency
	}
	return &entity.OrderHandle{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: currency,
		KeyID:    u.cfg.KeyID,
	}, nil
}

// VerifyPayment は署名を検証し、ゲートウェイ上の注文金額に応じてサブスクリプションを延長します。
//
// 署名不一致、または注文の notes.userId が呼び出しユーザーと異なる場合、ユーザーは一切変更されません。
func (u *paymentUsecase) VerifyPayment(ctx context.Context, userID uint, orderID, paymentID, signature string) (state *entity.SubscriptionState, err error) {
	defer func() {
		days := 0
		if state != nil {
			days = state.DaysAdded
		}
		u.observer.ObservePayment(paymentResultOf(err), days)
	}()

	if orderID == "" || paymentID == "" || signature == "" {
		return nil, ErrMissingPaymentDetails
	}
	if !VerifySignature(u.cfg.KeySecret, orderID, paymentID, signature) {
		return nil, ErrSignatureMismatch
	}

	// 金額はクライアントではなくゲートウェイから取得する
	order, err := u.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, classify(ErrGateway, err)
	}
	// 注文は作成時に notes.userId を付与している。他ユーザーの注文では延長しない
	if order.Notes["userId"] != strconv.FormatUint(uint64(userID), 10) {
		return nil, fmt.Errorf("%w: order %s was not created for user %d", ErrSignatureMismatch, orderID, userID)
	}
	plan, ok := entity.PlanForAmount(order.Amount)
	if !ok {
		return nil, fmt.Errorf("%w: order %s has amount %d", ErrInvalidAmount, orderID, order.Amount)
	}

	unlock, err := u.locker.Lock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user %d: %w", userID, err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		user, err := u.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("load user %d: %w", userID, err)
		}

		now := u.now()
		expiry := ExtendExpiry(now, user.SubscriptionExpiry, plan.Days)
		payment := &entity.Payment{
			UserID:    userID,
			OrderID:   orderID,
			PaymentID: paymentID,
			Amount:    order.Amount,
			DaysAdded: plan.Days,
			CreatedAt: now,
		}

		err = u.subs.Activate(ctx, userID, user.Version, expiry, payment)
		switch {
		case err == nil:
			return &entity.SubscriptionState{
				PaymentID: paymentID,
				OrderID:   orderID,
				Status:    authentity.SubscriptionActive,
				Expiry:    expiry,
				DaysAdded: plan.Days,
			}, nil
		case errors.Is(err, ErrVersionConflict) && attempt < maxActivateAttempts:
			continue
		case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrPaymentAlreadyProcessed):
			return nil, err
		default:
			return nil, fmt.Errorf("activate subscription for user %d: %w", userID, err)
		}
	}
}

// ListPayments はユーザーの決済履歴を新しい順に返します。
func (u *paymentUsecase) ListPayments(ctx context.Context, userID uint) ([]entity.Payment, error) {
	payments, err := u.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments for user %d: %w", userID, err)
	}
	return payments, nil
}

// classify は err が kind に分類されていなければ kind でラップします。
func classify(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func paymentResultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrMissingPaymentDetails), errors.Is(err, ErrInvalidAmount):
		return ResultInvalid
	case errors.Is(err, ErrSignatureMismatch):
		return ResultSignatureMismatch
	case errors.Is(err, ErrPaymentAlreadyProcessed):
		return ResultReplay
	case errors.Is(err, ErrGateway):
		return ResultGatewayError
	default:
		return ResultError
	}
}
