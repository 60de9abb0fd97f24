package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const defaultAPIURL = "https://api.telegram.org"

// Notifier sends review notices to an editors' Telegram chat via bot API.
type Notifier struct {
	apiURL   string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.ReviewNotifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty apiURL uses the public bot API.
func NewNotifier(apiURL, botToken, chatID string) *Notifier {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Notifier{
		apiURL:   strings.TrimSuffix(apiURL, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyReview posts a Markdown summary of the notice.
func (n *Notifier) NotifyReview(ctx context.Context, notice ports.ReviewNotice) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatNotice(notice))
	form.Set("parse_mode", "Markdown")

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

// FormatNotice renders the message body.
func FormatNotice(notice ports.ReviewNotice) string {
	var b strings.Builder
	switch notice.Status {
	case domain.VoiceFail:
		b.WriteString("*Activation blocked*")
	default:
		b.WriteString("*Review suggested*")
	}
	fmt.Fprintf(&b, "\n%s (`%s`)\n", escapeMarkdown(notice.Title), codeSpan(notice.ContentID))
	fmt.Fprintf(&b, "Brand voice: %.2f (%s)\n", notice.Score, escapeMarkdown(string(notice.Status)))
	if len(notice.Failing) > 0 {
		names := make([]string, 0, len(notice.Failing))
		for _, c := range notice.Failing {
			names = append(names, escapeMarkdown(string(c)))
		}
		fmt.Fprintf(&b, "Failing: %s\n", strings.Join(names, ", "))
	}
	for _, rec := range notice.Recommendations {
		fmt.Fprintf(&b, "- %s\n", escapeMarkdown(rec))
	}
	fmt.Fprintf(&b, "Activation: `%s`", codeSpan(notice.ActivationID))
	return b.String()
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// escapeMarkdown escapes the entity characters of Telegram's legacy Markdown outside entities.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// codeSpan makes s safe inside a `code` entity, where backslash escapes are not parsed.
func codeSpan(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
