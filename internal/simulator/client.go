package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scout/pkg/logger"
)

const progressInterval = time.Second

// httpClient wraps http.Client with a per-request timeout.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

func (c *httpClient) postJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// drain reads and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// submitPayloads posts every payload to /api/submit with cfg.Workers
// concurrent workers. results[i] is the answer for payloads[i].
func submitPayloads(ctx context.Context, cfg Config, payloads []Payload, stats *Stats) []Result {
	log := logger.Get()
	log.Info(ctx, "submitting payloads", logger.Int("payloads", len(payloads)), logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/api/submit"
	results := make([]Result, len(payloads))

	var (
		submitted, created, duplicate, invalid, failed int64
		lastReport                                     atomic.Int64
	)

	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := submitOne(ctx, client, url, payloads[i])
				results[i] = res

				atomic.AddInt64(&submitted, 1)
				switch res {
				case ResultCreated:
					atomic.AddInt64(&created, 1)
				case ResultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				case ResultInvalid:
					atomic.AddInt64(&invalid, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Debug(ctx, "submission progress",
						logger.Int64("submitted", atomic.LoadInt64(&submitted)),
						logger.Int("total", len(payloads)),
						logger.Int64("created", atomic.LoadInt64(&created)),
						logger.Int64("duplicate", atomic.LoadInt64(&duplicate)),
						logger.Int64("invalid", atomic.LoadInt64(&invalid)),
						logger.Int64("failed", atomic.LoadInt64(&failed)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range payloads {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	// Payloads never handed out because ctx ended count as failed.
	for i := range results {
		if results[i] == "" {
			results[i] = ResultFailed
			failed++
		}
	}

	stats.Submitted = int(submitted)
	stats.Created = int(created)
	stats.Duplicates = int(duplicate)
	stats.Invalid = int(invalid)
	stats.Failed = int(failed)

	log.Info(ctx, "submission completed",
		logger.Int("created", stats.Created),
		logger.Int("duplicate", stats.Duplicates),
		logger.Int("invalid", stats.Invalid),
		logger.Int("failed", stats.Failed))
	return results
}

// submitOne posts one payload and classifies the answer by status code.
func submitOne(ctx context.Context, client *httpClient, url string, p Payload) Result {
	resp, err := client.postJSON(ctx, url, p.Body)
	if err != nil {
		return ResultFailed
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return ResultCreated
	case http.StatusConflict:
		return ResultDuplicate
	case http.StatusBadRequest:
		return ResultInvalid
	default:
		return ResultFailed
	}
}
