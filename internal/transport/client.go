// internal/transport/client.go
//
// Widget data transport.
//
// Context
// -------
// Every data request is
//
//	POST <base>/widget/<type>/data?widget_id=<id>
//	{"params": {...instance params minus fetch...}}
//
// and the answer is a JSON object.  The HTTP status is not interpreted: a
// backend that reports a logical failure answers with {"error": "..."} and
// that travels to the widget like any other payload.  Only a failed request
// or an unparseable body is a transport failure (ErrTransport).
//
// Notes
// -----
// • Client is safe for concurrent use; the orchestrator calls it from
//   per-request goroutines and posts the outcome back to the event loop.
// • Oxford commas, two spaces after periods.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanizio/informer/internal/widget"
)

// ErrTransport marks a request that failed or returned a non-JSON body.
var ErrTransport = errors.New("widget transport failure")

const maxBodyBytes = 4 << 20

// Client posts widget data requests to the dashboard backend.
type Client struct {
	base string
	http *http.Client
}

// New returns a Client for baseURL.  A nil hc gets a client with timeout.
func New(baseURL string, hc *http.Client, timeout time.Duration) *Client {
	if hc == nil {
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// URL builds the data endpoint for one instance.
func (c *Client) URL(typ string, id int64) string {
	q := url.Values{"widget_id": {strconv.FormatInt(id, 10)}}
	return c.base + "/widget/" + url.PathEscape(typ) + "/data?" + q.Encode()
}

type requestBody struct {
	Params widget.Params `json:"params"`
}

// Fetch issues the data request.  params must already exclude the fetch
// flag.
func (c *Client) Fetch(ctx context.Context, typ string, id int64, params widget.Params) (widget.Payload, error) {
	if params == nil {
		params = widget.Params{}
	}
	body, err := json.Marshal(requestBody{Params: params})
	if err != nil {
		return nil, fmt.Errorf("%w: encode params: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(typ, id), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	var out widget.Payload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: decode body (status %d): %v", ErrTransport, typ, resp.StatusCode, err)
	}
	if out == nil {
		out = widget.Payload{}
	}
	return out, nil
}
