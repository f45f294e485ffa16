package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/platewise/backend/internal/domain"
)

// Client handles communication with the USDA FoodData Central API, used as
// the optional nutrition-enrichment collaborator.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new USDA API client. requestsPerHour throttles the
// outbound call rate (USDA allows 1000/hour; pass 0 for that default).
func NewClient(apiKey, baseURL string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = 1000
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the sleep before retry attempt n (1-based).
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

// SearchFoods searches the food database for an ingredient query. Transient
// failures (5xx, 429) are retried up to 3 times with backoff; 4xx responses
// are not retried.
func (c *Client) SearchFoods(ctx context.Context, query string) (*domain.FoodSearchResult, error) {
	if c.debug {
		log.Printf("[USDA] SearchFoods called with query: %q", query)
	}

	endpoint := fmt.Sprintf("%s/v1/foods/search", c.baseURL)
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Survey (FNDDS),Foundation,Branded")
	params.Add("pageSize", "10")

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "PlateWise/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[USDA] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrNutritionAPIFailure, err)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to parse below
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrFoodNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			log.Printf("[USDA] API error (attempt %d) - status: %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrNutritionAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		default:
			// Other 4xx: the request itself is bad, retrying won't help
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrNutritionAPIFailure, resp.StatusCode, string(body))
		}

		var result domain.FoodSearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if len(result.Foods) == 0 {
			return nil, domain.ErrFoodNotFound
		}

		if c.debug {
			log.Printf("[USDA] found %d foods for query: %q", len(result.Foods), query)
		}
		return &result, nil
	}

	log.Printf("[USDA] all retries failed for query: %q", query)
	return nil, lastErr
}
