package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// MoneroPayProvider issues receiving subaddresses and reports their funding
// state via a MoneroPay-compatible gateway.
type MoneroPayProvider struct {
	BaseURL string
	client  *http.Client
}

func NewMoneroPayProvider(baseURL string, timeout time.Duration) *MoneroPayProvider {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MoneroPayProvider{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type receiveReq struct {
	Amount      uint64 `json:"amount"` // piconero
	Description string `json:"description"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type receiveResp struct {
	Address     string `json:"address"`
	Amount      uint64 `json:"amount"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func (p *MoneroPayProvider) CreateAddress(ctx context.Context, req AddressRequest) (*AddressResponse, error) {
	amount, err := strconv.ParseUint(req.AmountAtomic, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("moneropay: bad atomic amount %q: %w", req.AmountAtomic, err)
	}
	payload := receiveReq{
		Amount:      amount,
		Description: req.Description,
		CallbackURL: req.CallbackURL,
	}
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/receive", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("moneropay receive: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("moneropay receive: %d %s", resp.StatusCode, string(respBody))
	}
	var out receiveResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("moneropay receive: %w", err)
	}
	if out.Address == "" {
		return nil, fmt.Errorf("moneropay receive: empty address in response")
	}
	return &AddressResponse{
		Address:      out.Address,
		AmountAtomic: strconv.FormatUint(out.Amount, 10),
	}, nil
}

type receiveStatusResp struct {
	Amount struct {
		Expected uint64 `json:"expected"`
		Covered  struct {
			Total    uint64 `json:"total"`
			Unlocked uint64 `json:"unlocked"`
		} `json:"covered"`
	} `json:"amount"`
	Complete     bool `json:"complete"`
	Transactions []struct {
		Amount        uint64 `json:"amount"`
		Confirmations int    `json:"confirmations"`
	} `json:"transactions"`
}

func (p *MoneroPayProvider) CheckAddress(ctx context.Context, address string) (*AddressStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/receive/"+address, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("moneropay status: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moneropay status: %d %s", resp.StatusCode, string(respBody))
	}
	var out receiveStatusResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("moneropay status: %w", err)
	}
	confirmations := 0
	for _, tx := range out.Transactions {
		if confirmations == 0 || tx.Confirmations < confirmations {
			confirmations = tx.Confirmations
		}
	}
	return &AddressStatus{
		AmountReceived: strconv.FormatUint(out.Amount.Covered.Total, 10),
		Confirmations:  confirmations,
		Complete:       out.Complete,
	}, nil
}
