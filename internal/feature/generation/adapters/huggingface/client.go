package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"imagegen_backend/internal/feature/generation/usecase"
)

const (
	// maxImageBytes は受け付ける画像レスポンスの上限です。
	maxImageBytes = 20 << 20
	// maxErrorBody はエラー時に保持するレスポンス本文の上限です。
	maxErrorBody = 2 << 10
)

// HuggingFaceGenerator はHugging Face推論APIで画像を生成するImageGenerator実装です。
type HuggingFaceGenerator struct {
	cfg    Config
	client *http.Client
}

// HuggingFaceGeneratorがImageGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.ImageGenerator = (*HuggingFaceGenerator)(nil)

// NewHuggingFaceGenerator は指定された設定とHTTPクライアントでHuggingFaceGeneratorを生成します。
func NewHuggingFaceGenerator(cfg Config, client *http.Client) *HuggingFaceGenerator {
	return &HuggingFaceGenerator{cfg: cfg, client: client}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Generate はプロンプトを推論APIに送り、生の画像バイト列を返します。
// 2xx以外は *usecase.UpstreamError、通信エラーやタイムアウトは usecase.ErrUpstream でラップして返します。
func (g *HuggingFaceGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return nil, err
	}

	u := strings.TrimRight(g.cfg.BaseURL, "/") + "/" + g.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecase.ErrUpstream, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &usecase.UpstreamError{StatusCode: res.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", usecase.ErrUpstream, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", usecase.ErrUpstream, maxImageBytes)
	}
	return data, nil
}
