package dict

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Status is the outcome of a health ping against the dictionary server.
type Status struct {
	Healthy        bool
	Busy           bool
	Message        string
	ResponseMillis int64
}

// Health pings the server root. Any response at all means the process is
// alive; 404 and 501 just mean the root route is unmapped. While
// tokenize calls are in flight the timeout is stretched and a timeout is
// read as "busy" rather than "down".
func (c *Client) Health(ctx context.Context) Status {
	timeout := 3 * time.Second
	busy := c.InFlight() > 0
	if busy {
		timeout = 5 * time.Second
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return Status{Message: fmt.Sprintf("build health request: %v", err)}
	}

	resp, err := c.http.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if busy && reqCtx.Err() == context.DeadlineExceeded {
			return Status{
				Healthy:        true,
				Busy:           true,
				Message:        fmt.Sprintf("dictionary server busy processing (%dms timeout)", elapsed),
				ResponseMillis: elapsed,
			}
		}
		return Status{Message: fmt.Sprintf("dictionary server not responding: %v", err), ResponseMillis: elapsed}
	}
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound, http.StatusNotImplemented:
		return Status{
			Healthy:        true,
			Busy:           busy,
			Message:        fmt.Sprintf("dictionary server responding (%dms)", elapsed),
			ResponseMillis: elapsed,
		}
	default:
		return Status{
			Message:        fmt.Sprintf("dictionary server responded with status %d", resp.StatusCode),
			ResponseMillis: elapsed,
		}
	}
}
