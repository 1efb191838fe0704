// Package razorpay はRazorpay Orders APIのクライアントを提供します。
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"imagegen_backend/internal/feature/payment/domain/entity"
	"imagegen_backend/internal/feature/payment/usecase"
)

// maxBody は読み込むレスポンス本文の上限です。
const maxBody = 64 << 10

// Client はBasic認証でOrders APIを呼び出すGateway実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがGatewayを実装していることをコンパイル時に検証します。
var _ usecase.Gateway = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string          `json:"id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status"`
	Notes    json.RawMessage `json:"notes"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder は POST /orders で注文を作成します。
func (c *Client) CreateOrder(ctx context.Context, req entity.OrderRequest) (*entity.Order, error) {
	payload, err := json.Marshal(createOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/orders", payload)
}

// FetchOrder は GET /orders/{id} で注文を取得します。
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	return c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
}

// do はリクエストを送り、注文レスポンスをデコードします。
// 2xx以外は *usecase.GatewayError、通信エラーやタイムアウトは usecase.ErrGateway でラップして返します。
func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*entity.Order, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", usecase.ErrGateway, method, path, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", usecase.ErrGateway, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		gerr := &usecase.GatewayError{StatusCode: res.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error.Code != "" {
			gerr.Code = er.Error.Code
			gerr.Description = er.Error.Description
		} else {
			gerr.Description = strings.TrimSpace(string(raw))
		}
		return nil, gerr
	}

	var or orderResponse
	if err := json.Unmarshal(raw, &or); err != nil {
		return nil, fmt.Errorf("%w: decode order: %w", usecase.ErrGateway, err)
	}
	if or.ID == "" {
		return nil, fmt.Errorf("%w: order response without id", usecase.ErrGateway)
	}
	return &entity.Order{
		ID:       or.ID,
		Amount:   or.Amount,
		Currency: or.Currency,
		Receipt:  or.Receipt,
		Status:   or.Status,
		Notes:    decodeNotes(or.Notes),
	}, nil
}

// decodeNotes は notes を読み取ります。空の notes は [] で返されることがあります。
func decodeNotes(raw json.RawMessage) map[string]string {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var notes map[string]any
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil
	}
	out := make(map[string]string, len(notes))
	for k, v := range notes {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
