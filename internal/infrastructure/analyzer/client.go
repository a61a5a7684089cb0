// Package analyzer talks to the external AI-analysis service over HTTP.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/breachscan/tender-system/internal/core/domain"
)

const defaultTimeout = 2 * time.Minute

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Title           string `json:"title"`
	Customer        string `json:"customer"`
	Price           string `json:"price"`
	ContractNumber  string `json:"contract_number"`
	PurchaseObjects string `json:"purchase_objects"`
	ContractDate    string `json:"contract_date"`
	ExecutionDate   string `json:"execution_date"`
}

type analyzeResponse struct {
	Analysis string `json:"analysis"`
}

// Analyze requests a fresh textual review of one tender record.
func (c *Client) Analyze(ctx context.Context, record domain.TenderRecord) (string, error) {
	body, err := json.Marshal(analyzeRequest{
		Title:           record.Title,
		Customer:        record.Customer,
		Price:           record.Price,
		ContractNumber:  record.ContractNumber,
		PurchaseObjects: record.PurchaseObjects,
		ContractDate:    record.ContractDate,
		ExecutionDate:   record.ExecutionDate,
	})
	if err != nil {
		return "", fmt.Errorf("analyzer request encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyzer call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}

	var payload analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("analyzer response decode: %w", err)
	}
	return payload.Analysis, nil
}
