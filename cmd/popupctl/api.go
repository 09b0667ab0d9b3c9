package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/seth-js/yomichan-ru/internal/shared/types"
)

// newAPIClient returns a client for the host's HTTP API. Failed requests
// and 5xx answers are retried by the retryablehttp round tripper.
func newAPIClient(baseURL string) *resty.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("User-Agent", "popupctl/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	client.SetTransport(&retryablehttp.RoundTripper{Client: retryClient})
	return client
}

func listPopups(ctx context.Context, baseURL string) ([]types.PopupInfo, error) {
	var out struct {
		Popups []types.PopupInfo `json:"popups"`
	}
	resp, err := newAPIClient(baseURL).R().
		SetContext(ctx).
		SetResult(&out).
		Get("/popups")
	if err != nil {
		return nil, fmt.Errorf("list popups: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list popups: %s", resp.Status())
	}
	return out.Popups, nil
}
