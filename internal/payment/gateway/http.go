package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/recurrent/internal/payment/domain"
)

// HTTPGateway authorizes charges against an external payment gateway over
// HTTP. Transport-level failures are returned as errors; a declined charge
// comes back as a failed Outcome with the gateway's reason code.
type HTTPGateway struct {
	endpoint string
	client   *http.Client
}

func NewHTTPGateway(endpoint string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type chargeRequest struct {
	Token       string `json:"token"`
	AmountCents int64  `json:"amount_cents"`
}

type chargeResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	ReasonCode    string `json:"error"`
}

func (g *HTTPGateway) Charge(ctx context.Context, token string, amountCents int64) (domain.Outcome, error) {
	if amountCents <= 0 {
		return domain.Outcome{}, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(token) == "" {
		return domain.Outcome{}, domain.ErrInvalidToken
	}

	payload, err := json.Marshal(chargeRequest{Token: token, AmountCents: amountCents})
	if err != nil {
		return domain.Outcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/charges", bytes.NewReader(payload))
	if err != nil {
		return domain.Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.Outcome{}, fmt.Errorf("gateway unavailable: status %d", resp.StatusCode)
	}

	var decoded chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Outcome{}, fmt.Errorf("decode gateway response: %w", err)
	}

	if decoded.Status == string(domain.OutcomeSuccess) {
		return domain.Outcome{
			Status:        domain.OutcomeSuccess,
			TransactionID: decoded.TransactionID,
		}, nil
	}
	reason := decoded.ReasonCode
	if reason == "" {
		reason = "declined"
	}
	return domain.Outcome{
		Status:     domain.OutcomeFailed,
		ReasonCode: reason,
	}, nil
}
