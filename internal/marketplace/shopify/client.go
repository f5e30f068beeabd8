// Package shopify implements product publication against the Shopify
// Admin GraphQL API: product creation, staged media upload, sales
// channel publication and SEO meta updates.
package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketpush/internal/logger"
)

type Client struct {
	baseURL     string
	apiVersion  string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

// NewClient builds a client for one store. storeURL is the admin
// domain ("my-store.myshopify.com"); an explicit http/https prefix is
// kept as-is so tests can target a local server.
func NewClient(storeURL, accessToken, apiVersion string, logger *logger.Logger) *Client {
	base := storeURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return &Client{
		baseURL:     strings.TrimRight(base, "/"),
		apiVersion:  apiVersion,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)
}

// execute posts one GraphQL document and decodes the data payload
// into out. Top-level GraphQL errors become a single error; per-field
// userErrors are each operation's concern.
func (c *Client) execute(query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequest("POST", c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, "; "))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode GraphQL data: %w", err)
		}
	}

	return nil
}
