package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// CoinGeckoSource fetches the XMR spot price in CAD from the CoinGecko
// simple-price endpoint.
type CoinGeckoSource struct {
	BaseURL string
	client  *http.Client
}

func NewCoinGeckoSource(baseURL string, timeout time.Duration) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoSource{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type simplePriceResp struct {
	Monero struct {
		CAD decimal.Decimal `json:"cad"`
	} `json:"monero"`
}

func (s *CoinGeckoSource) Quote(ctx context.Context) (decimal.Decimal, error) {
	url := s.BaseURL + "/api/v3/simple/price?ids=monero&vs_currencies=cad"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate quote: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate quote: %d %s", resp.StatusCode, string(body))
	}
	var out simplePriceResp
	if err := json.Unmarshal(body, &out); err != nil {
		return decimal.Zero, fmt.Errorf("rate quote: %w", err)
	}
	if !out.Monero.CAD.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate quote: non-positive rate %s", out.Monero.CAD)
	}
	return out.Monero.CAD, nil
}
