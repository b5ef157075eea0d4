package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clorindastore/storefront-backend/internal/apperr"
)

// HTTPClient talks to a RajaOngkir-compatible rate API. The courier
// call is the slowest dependency on the checkout path, so the timeout
// is bounded and failures map to a retryable gateway error.
type HTTPClient struct {
	baseURL  string
	apiKey   string
	originID int
	httpc    *http.Client
}

func NewHTTPClient(baseURL, apiKey string, originID int) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		originID: originID,
		httpc:    &http.Client{Timeout: 10 * time.Second},
	}
}

type costResponse struct {
	Data []struct {
		Name        string `json:"name"`
		Code        string `json:"code"`
		Service     string `json:"service"`
		Description string `json:"description"`
		Cost        int64  `json:"cost"`
		Etd         string `json:"etd"`
	} `json:"data"`
}

func (c *HTTPClient) Quote(ctx context.Context, destinationID, weightGrams int, courier string) ([]ServiceOption, error) {
	if c.originID <= 0 {
		return nil, apperr.New(apperr.Internal, apperr.CodeInternal, "shipping origin is not configured")
	}

	form := url.Values{}
	form.Set("origin", strconv.Itoa(c.originID))
	form.Set("destination", strconv.Itoa(destinationID))
	form.Set("weight", strconv.Itoa(weightGrams))
	form.Set("courier", courier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/calculate/domestic-cost", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("key", c.apiKey)

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Gateway, apperr.CodeShippingGateway, "courier rate request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, apperr.Newf(apperr.Gateway, apperr.CodeShippingGateway,
			"courier rate request returned status %d", res.StatusCode)
	}

	var decoded costResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, apperr.Wrap(apperr.Gateway, apperr.CodeShippingGateway,
			fmt.Sprintf("malformed courier rate response for %s", courier), err)
	}

	options := make([]ServiceOption, 0, len(decoded.Data))
	for _, d := range decoded.Data {
		options = append(options, ServiceOption{
			Name:        d.Name,
			Code:        d.Code,
			Service:     d.Service,
			Description: d.Description,
			Cost:        d.Cost,
			Etd:         d.Etd,
		})
	}
	return options, nil
}
