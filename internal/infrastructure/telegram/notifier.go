// Package telegram announces freshly discovered apéro events to a chat
// through the Telegram bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"AperoScanner/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"

	// Telegram rejects sendMessage payloads above 4096 characters, so a
	// busy harvest day has to go out as several messages.
	maxMessageLen = 4096
)

// Notifier sends apéro digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest posts the digest, split on event boundaries into messages
// Telegram will accept. Digests are sent as plain text: event titles come
// from third-party sites and routinely contain characters that Markdown
// parse modes reject. Link previews are off, every event carries a URL and
// previews would bury the list.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	for _, message := range splitDigest(digest, maxMessageLen) {
		if err := n.send(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, message string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", message)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// splitDigest packs blank-line-separated event blocks into chunks of at
// most limit characters. A single block longer than the limit is truncated
// rather than dropped.
func splitDigest(digest string, limit int) []string {
	digest = strings.TrimRight(digest, "\n")
	if digest == "" {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
	)
	for _, block := range strings.Split(digest, "\n\n") {
		if len(block) > limit {
			block = block[:limit]
		}
		if current.Len() > 0 && current.Len()+len(block)+2 > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(block)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
