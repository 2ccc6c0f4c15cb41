package price

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// BinanceP2PURL is the Binance P2P offer search endpoint.
const BinanceP2PURL = "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"

// Client fetches the current USDT/NPR BUY price from Binance P2P.
type Client struct {
	HTTP *http.Client
	URL  string
}

func NewClient() *Client {
	return &Client{
		HTTP: http.DefaultClient,
		URL:  BinanceP2PURL,
	}
}

type searchRequest struct {
	Asset     string   `json:"asset"`
	Fiat      string   `json:"fiat"`
	TradeType string   `json:"tradeType"`
	Page      int      `json:"page"`
	Rows      int      `json:"rows"`
	Countries []string `json:"countries"`
}

type searchResponse struct {
	Data []struct {
		Adv struct {
			Price string `json:"price"`
		} `json:"adv"`
	} `json:"data"`
}

// Fetch returns the best current P2P offer price. The bool is false whenever
// a price could not be obtained; every failure is logged here and never
// propagated, so callers treat it as "no price available this cycle".
func (c *Client) Fetch() (float64, bool) {
	payload, err := json.Marshal(searchRequest{
		Asset:     "USDT",
		Fiat:      "NPR",
		TradeType: "BUY",
		Page:      1,
		Rows:      1,
		Countries: []string{},
	})
	if err != nil {
		log.Errorf("❌ Failed to encode P2P search request: %v", err)
		return 0, false
	}

	resp, err := c.HTTP.Post(c.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Errorf("❌ Failed to fetch P2P price: %v", err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorf("❌ P2P price endpoint returned status %d", resp.StatusCode)
		return 0, false
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Errorf("❌ Failed to parse P2P price response: %v", err)
		return 0, false
	}

	if len(parsed.Data) == 0 {
		log.Error("❌ P2P price response contains no offers")
		return 0, false
	}

	p, err := strconv.ParseFloat(parsed.Data[0].Adv.Price, 64)
	if err != nil {
		log.Errorf("❌ P2P price %q is not numeric: %v", parsed.Data[0].Adv.Price, err)
		return 0, false
	}

	return p, true
}
