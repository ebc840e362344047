package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"solrisk/pkg/ratelimit"
	"solrisk/pkg/retry"
	"solrisk/pkg/utils"
)

// json - компактный конфиг json-iterator, совместимый со стандартной
// библиотекой
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// lamportsPerSol - количество лампортов в одном SOL
const lamportsPerSol = 1_000_000_000

// Ошибки клиента
var (
	// ErrNoAccount возвращается когда адрес аккаунта не сконфигурирован
	ErrNoAccount = errors.New("wallet account not configured")
)

// RPCError - ошибка уровня JSON-RPC (не транспорта).
// Такие ошибки не имеет смысла ретраить: запрос дошёл, нода ответила отказом.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("solana rpc error %d: %s", e.Code, e.Message)
}

// Retryable помечает RPC ошибки как постоянные для pkg/retry
func (e *RPCError) Retryable() bool {
	return false
}

// Config - настройки клиента кошелька
type Config struct {
	RPCURL         string  // адрес Solana JSON-RPC ноды
	Account        string  // base58 адрес наблюдаемого аккаунта
	RequestsPerSec float64 // лимит запросов к ноде
	HTTP           HTTPClientConfig
}

// Client - клиент Solana JSON-RPC для запросов баланса.
// Реализует ledger.BalanceProvider.
type Client struct {
	rpcURL  string
	account string

	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
	log        *utils.Logger

	// Подписывающая identity; nil в degraded режиме
	identity *Identity

	requestID atomic.Int64
}

// NewClient создаёт клиент кошелька.
// identity может быть nil: балансовые запросы работают без ключа.
func NewClient(cfg Config, identity *Identity, log *utils.Logger) *Client {
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.HTTP == (HTTPClientConfig{}) {
		cfg.HTTP = DefaultHTTPClientConfig()
	}

	return &Client{
		rpcURL:     cfg.RPCURL,
		account:    cfg.Account,
		httpClient: newHTTPClient(cfg.HTTP),
		limiter:    ratelimit.NewRateLimiter(cfg.RequestsPerSec, cfg.RequestsPerSec),
		log:        log.WithComponent("wallet"),
		identity:   identity,
	}
}

// HasIdentity сообщает, доступен ли подписывающий ключ
func (c *Client) HasIdentity() bool {
	return c.identity != nil
}

// PublicKey возвращает hex публичного ключа identity или пустую строку
// в degraded режиме
func (c *Client) PublicKey() string {
	if c.identity == nil {
		return ""
	}
	return c.identity.PublicKeyHex()
}

// Account возвращает наблюдаемый адрес
func (c *Client) Account() string {
	return c.account
}

// rpcRequest - конверт JSON-RPC 2.0
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      int64               `json:"id"`
	Result  jsoniter.RawMessage `json:"result"`
	Error   *RPCError           `json:"error"`
}

// balanceResult - result метода getBalance
type balanceResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value uint64 `json:"value"` // лампорты
}

// GetBalance возвращает баланс наблюдаемого аккаунта в SOL
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	if c.account == "" {
		return 0, retry.Permanent(ErrNoAccount)
	}

	raw, err := c.call(ctx, "getBalance", []interface{}{c.account})
	if err != nil {
		return 0, err
	}

	var result balanceResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return 0, fmt.Errorf("decode getBalance result: %w", err)
	}

	sol := float64(result.Value) / lamportsPerSol

	c.log.Debug("Balance fetched",
		utils.Float64("sol", sol),
		utils.Int64("slot", int64(result.Context.Slot)),
	)

	return sol, nil
}

// GetSlot возвращает текущий слот ноды (health проба)
func (c *Client) GetSlot(ctx context.Context) (uint64, error) {
	raw, err := c.call(ctx, "getSlot", nil)
	if err != nil {
		return 0, err
	}

	var slot uint64
	if err := json.Unmarshal(raw, &slot); err != nil {
		return 0, fmt.Errorf("decode getSlot result: %w", err)
	}
	return slot, nil
}

// call выполняет один JSON-RPC вызов с учётом rate limit
func (c *Client) call(ctx context.Context, method string, params []interface{}) (jsoniter.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rpc response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// 429/5xx - временные, ретраятся вызывающей стороной
		return nil, fmt.Errorf("rpc %s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}
