package dict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultBaseURL is the local dictionary server address.
	DefaultBaseURL = "http://127.0.0.1:19633"

	// DefaultTimeout is generous because the server tokenizes a whole
	// chunk per request.
	DefaultTimeout = 100 * time.Second

	// DefaultScanLength is the maximum lookahead the segmenter uses per
	// position. The tokenize endpoint rejects requests without it.
	DefaultScanLength = 50
)

// Client talks to the local dictionary server: chunk tokenization,
// per-term frequency lookup and health pings. The frequency cache lives
// here for the lifetime of the client.
type Client struct {
	baseURL string
	http    *http.Client

	inFlight atomic.Int64

	freqMu    sync.Mutex
	freqCache map[string]FrequencyRecord
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: timeout},
		freqCache: map[string]FrequencyRecord{},
	}
}

// NewClientFromEnv builds a client from NVL_DICT_URL and
// NVL_DICT_TIMEOUT_SECONDS, falling back to the defaults.
func NewClientFromEnv() *Client {
	baseURL := os.Getenv("NVL_DICT_URL")
	timeout := DefaultTimeout
	if raw := os.Getenv("NVL_DICT_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return NewClient(baseURL, timeout)
}

// InFlight reports how many tokenize calls are currently outstanding.
// The health checker uses this to stretch its timeout while the system
// is busy.
func (c *Client) InFlight() int {
	return int(c.inFlight.Load())
}

// TokenizeChunk sends one chunk to the tokenize endpoint and returns the
// canonical token list. Transport failures, non-200 statuses and
// malformed responses all come back as errors; the caller decides
// whether to degrade to the local fallback segmenter.
func (c *Client) TokenizeChunk(ctx context.Context, text string, scanLength int) ([]string, error) {
	if scanLength <= 0 {
		scanLength = DefaultScanLength
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	payload, err := json.Marshal(map[string]any{
		"text":       text,
		"scanLength": scanLength,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tokenize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tokenize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build tokenize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokenize request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokenize status %d", resp.StatusCode)
	}

	tokens, err := decodeTokens(body)
	if err != nil {
		return nil, fmt.Errorf("decode tokenize response: %w", err)
	}
	return tokens, nil
}
