// Package imagen はGoogle Imagen（genai SDK）を使用した画像生成クライアントを提供します。
package imagen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"imagegen_backend/internal/feature/generation/usecase"
)

const (
	// DefaultModel はImagenのデフォルトモデルです。
	DefaultModel = "imagen-3.0-generate-002"
)

// ImagenGenerator はGoogle Imagenで画像を生成します。
type ImagenGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// ImagenGeneratorがImageGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.ImageGenerator = (*ImagenGenerator)(nil)

// NewImagenGenerator はImagenGeneratorの新しいインスタンスを生成します。
// apiKey が空の場合はADCと環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION を使用します。
func NewImagenGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*ImagenGenerator, error) {
	var cc *genai.ClientConfig
	if apiKey != "" {
		cc = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &ImagenGenerator{client: client, model: model, timeout: timeout}, nil
}

// Generate はプロンプトから1枚のPNG画像を生成します。
func (g *ImagenGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, translateError(err)
	}
	return firstImage(resp)
}

// translateError はAPIエラーを UpstreamError に、それ以外を ErrUpstream に変換します。
func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == 0 {
			code = http.StatusBadGateway
		}
		return &usecase.UpstreamError{StatusCode: code, Body: apiErr.Message}
	}
	return fmt.Errorf("%w: imagen request failed: %w", usecase.ErrUpstream, err)
}

// firstImage は応答から最初の画像バイト列を取り出します。
// 安全フィルタで全て除外された場合はその理由を含めてエラーにします。
func firstImage(resp *genai.GenerateImagesResponse) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty imagen response", usecase.ErrUpstream)
	}
	var filtered string
	for _, gi := range resp.GeneratedImages {
		if gi == nil {
			continue
		}
		if gi.Image != nil && len(gi.Image.ImageBytes) > 0 {
			return gi.Image.ImageBytes, nil
		}
		if gi.RAIFilteredReason != "" {
			filtered = gi.RAIFilteredReason
		}
	}
	if filtered != "" {
		return nil, fmt.Errorf("%w: %s", usecase.ErrContentRejected, filtered)
	}
	return nil, fmt.Errorf("%w: imagen returned no images", usecase.ErrUpstream)
}
