package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendNotifier sends the threshold email through the Resend HTTP API.
// With no API key every send is a no-op failure rather than a crash.
type ResendNotifier struct {
	apiKey string
	from   string
	client *http.Client
}

// NewResendNotifier builds the email notifier. from defaults to the Resend
// onboarding sender.
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	if from == "" {
		from = "onboarding@resend.dev"
	}
	return &ResendNotifier{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (n *ResendNotifier) Send(ctx context.Context, address string, position int) error {
	if n.apiKey == "" {
		return ErrNotConfigured
	}

	body := resendRequest{
		From:    n.from,
		To:      []string{address},
		Subject: "You're almost up!",
		HTML: fmt.Sprintf("<p>You're now position <b>%d</b>. Only %d people ahead of you.</p>",
			position, position-1),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}
