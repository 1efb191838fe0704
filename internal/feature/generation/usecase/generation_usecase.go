package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	authentity "imagegen_backend/internal/feature/auth/domain/entity"
	"imagegen_backend/internal/feature/generation/domain/entity"
)

// MinPromptLength はトリム後のプロンプトに必要な最小文字数（rune数）です。
const MinPromptLength = 3

// Generation result labels reported to the Observer.
const (
	ResultSuccess       = "success"
	ResultInvalidPrompt = "invalid_prompt"
	ResultInactive      = "inactive"
	ResultUpstreamError = "upstream_error"
	ResultStorageError  = "storage_error"
	ResultRejected      = "rejected"
	ResultError         = "error"
)

// UserReader はサブスクリプション判定のためにユーザーを読み込みます。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type UserReader interface {
	FindByID(ctx context.Context, id uint) (*authentity.User, error)
}

// ImageGenerator はプロンプトから画像バイト列を生成する推論プロバイダーです。
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// ImageStore は画像バイト列をストレージにアップロードし、公開URLを返します。
type ImageStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// ImageRepository は生成画像の永続化層を抽象化します。
type ImageRepository interface {
	Create(ctx context.Context, img *entity.Image) error
	// ListByUser は新しい順に全件を返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Image, error)
}

// Moderator は生成画像をアップロード前に審査します。
// 不適切と判定した場合は ErrContentRejected を返します。
type Moderator interface {
	Check(ctx context.Context, data []byte) error
}

// Observer は生成結果を計測します。
type Observer interface {
	ObserveGeneration(result string)
}

type nopObserver struct{}

func (nopObserver) ObserveGeneration(string) {}

// Option は generationUsecase の任意設定です。
type Option func(*generationUsecase)

// WithClock は現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(u *generationUsecase) { u.now = now }
}

// WithObserver は生成結果の計測先を設定します。
func WithObserver(o Observer) Option {
	return func(u *generationUsecase) { u.observer = o }
}

// WithModerator はアップロード前のコンテンツ審査を有効にします。
func WithModerator(m Moderator) Option {
	return func(u *generationUsecase) { u.moderator = m }
}

// generationUsecase は画像生成と一覧のビジネスロジックを提供します。
type generationUsecase struct {
	users     UserReader
	generator ImageGenerator
	store     ImageStore
	images    ImageRepository
	moderator Moderator
	observer  Observer
	now       func() time.Time
}

// NewGenerationUsecase はgenerationUsecaseの新しいインスタンスを生成します。
func NewGenerationUsecase(users UserReader, generator ImageGenerator, store ImageStore, images ImageRepository, opts ...Option) *generationUsecase {
	u := &generationUsecase{
		users:     users,
		generator: generator,
		store:     store,
		images:    images,
		observer:  nopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Generate はサブスクリプションを確認したうえで画像を生成・保存し、記録を返します。
//
// 処理順: プロンプト検証 → ユーザー取得 → サブスクリプション判定 → 推論 → (審査) → アップロード → 永続化
func (u *generationUsecase) Generate(ctx context.Context, userID uint, prompt string) (img *entity.Image, err error) {
	defer func() { u.observer.ObserveGeneration(resultOf(err)) }()

	text := strings.TrimSpace(prompt)
	if utf8.RuneCountInString(text) < MinPromptLength {
		return nil, ErrInvalidPrompt
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	if !user.HasActiveSubscription(u.now()) {
		return nil, ErrSubscriptionInactive
	}

	data, err := u.generator.Generate(ctx, text)
	if err != nil {
		return nil, classify(ErrUpstream, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", ErrUpstream)
	}

	if u.moderator != nil {
		if err := u.moderator.Check(ctx, data); err != nil {
			if errors.Is(err, ErrContentRejected) {
				return nil, err
			}
			return nil, classify(ErrUpstream, err)
		}
	}

	url, err := u.store.Upload(ctx, data)
	if err != nil {
		return nil, classify(ErrStorage, err)
	}
	if url == "" {
		return nil, fmt.Errorf("%w: no secure url returned", ErrStorage)
	}

	img = &entity.Image{
		UserID:        userID,
		CloudinaryURL: url,
		PromptText:    text,
		CreatedAt:     u.now(),
	}
	if err := u.images.Create(ctx, img); err != nil {
		// アップロード済みのオブジェクトは削除しない
		slog.Error("image record not saved after upload", "error", err, "user_id", userID, "orphan_url", url)
		return nil, fmt.Errorf("save image: %w", err)
	}
	return img, nil
}

// ListImages はユーザーの全画像を新しい順に返します。
func (u *generationUsecase) ListImages(ctx context.Context, userID uint) ([]entity.Image, error) {
	images, err := u.images.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list images for user %d: %w", userID, err)
	}
	return images, nil
}

// classify は err が kind に分類されていなければ kind でラップします。
func classify(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrInvalidPrompt):
		return ResultInvalidPrompt
	case errors.Is(err, ErrSubscriptionInactive):
		return ResultInactive
	case errors.Is(err, ErrContentRejected):
		return ResultRejected
	case errors.Is(err, ErrUpstream):
		return ResultUpstreamError
	case errors.Is(err, ErrStorage):
		return ResultStorageError
	default:
		return ResultError
	}
}
