package dispatch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"resty.dev/v3"
)

// fetchUnit resolves the unit bytes from an http(s) URL or a filesystem
// path.
func fetchUnit(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return fetchRemote(ctx, location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit file: %w", err)
	}
	return data, nil
}

func fetchRemote(ctx context.Context, url string) ([]byte, error) {
	client := resty.New()
	defer client.Close()

	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unit from %s: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("failed to fetch unit from %s: %s", url, res.Status())
	}
	return res.Bytes(), nil
}
