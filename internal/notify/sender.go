package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Sender delivers one text message to one target.
type Sender interface {
	Send(ctx context.Context, target, message string) error
}

type sendRequest struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

// HTTPSender posts {target, message} to a messaging gateway. Token goes verbatim into Authorization.
type HTTPSender struct {
	Client *http.Client
	URL    string
	Token  string
}

func (s *HTTPSender) Send(ctx context.Context, target, message string) error {
	body, err := json.Marshal(sendRequest{Target: target, Message: message})
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", s.Token)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// NopSender drops everything. Used when no gateway URL is configured.
type NopSender struct{}

func (NopSender) Send(context.Context, string, string) error { return nil }
