package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sendgridMailEndpoint = "https://api.sendgrid.com/v3/mail/send"

// EmailNotifier sends the download link by email via SendGrid.
type EmailNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	endpoint  string
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		endpoint:  sendgridMailEndpoint,
	}
}

// NewEmailNotifierWithEndpoint overrides the mail API endpoint, for tests.
func NewEmailNotifierWithEndpoint(apiKey, fromEmail, fromName, endpoint string) *EmailNotifier {
	n := NewEmailNotifier(apiKey, fromEmail, fromName)
	n.endpoint = endpoint
	return n
}

func (n *EmailNotifier) SendDownloadLink(ctx context.Context, recipientEmail, itemTitle, downloadLink string, validFor time.Duration) error {
	validDays := int(validFor.Hours() / 24)
	body := fmt.Sprintf(
		"Thanks for supporting independent creators! Here's your DRM-free EPUB of %s.\n\n"+
			"Download link: %s\n(Valid for %d days, single use.)\n\n"+
			"Questions? Reply to this email.\n",
		itemTitle, downloadLink, validDays,
	)

	payload := sgMailPayload{
		Personalizations: []sgPersonalization{{
			To: []sgAddress{{Email: recipientEmail}},
		}},
		From:    sgAddress{Email: n.fromEmail, Name: n.fromName},
		Subject: fmt.Sprintf("Your download: %s", itemTitle),
		Content: []sgContent{{Type: "text/plain", Value: body}},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SendGrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create SendGrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("SendGrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SendGrid returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendGrid v3 Mail Send API payload types.
type sgMailPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
