package notification

import (
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	enabled    bool

	post func(url string, msg *slack.WebhookMessage) error
}

func NewSlackNotifier(webhookURL, channel, username, iconEmoji string, enabled bool) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		username:   username,
		iconEmoji:  iconEmoji,
		enabled:    enabled && webhookURL != "",
		post:       slack.PostWebhook,
	}
}

// SendRichNotification posts a single attachment. It is a no-op when
// notifications are disabled.
func (s *SlackNotifier) SendRichNotification(title, message, color string, fields map[string]string) error {
	if !s.enabled {
		return nil
	}

	attachmentFields := make([]slack.AttachmentField, 0, len(fields))
	for k, v := range fields {
		attachmentFields = append(attachmentFields, slack.AttachmentField{
			Title: k,
			Value: v,
			Short: len(v) < 20,
		})
	}

	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{{
			Title:      title,
			Text:       message,
			Color:      color,
			Fields:     attachmentFields,
			MarkdownIn: []string{"text", "fields"},
		}},
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
	}

	return s.post(s.webhookURL, msg)
}

func (s *SlackNotifier) NotifyHTTPError(statusCode int, title string, err error, request *http.Request, context map[string]string) error {
	if !s.enabled || err == nil {
		return nil
	}

	if context == nil {
		context = make(map[string]string)
	}
	context["Error"] = fmt.Sprintf("`%v`", err)

	if request != nil {
		context["Method"] = request.Method
		context["Path"] = request.URL.Path
		context["User-Agent"] = request.UserAgent()
		context["Remote IP"] = request.RemoteAddr
	}

	color := "warning"
	if statusCode >= 500 {
		color = "danger"
	}

	return s.SendRichNotification(
		fmt.Sprintf(":rotating_light: %s (HTTP %d)", title, statusCode),
		"",
		color,
		context,
	)
}

func (s *SlackNotifier) NotifyServerError(err error, request *http.Request) error {
	return s.NotifyHTTPError(http.StatusInternalServerError, "Internal Server Error", err, request, nil)
}

// NotifyStorageError reports a failed bucket operation behind a request.
func (s *SlackNotifier) NotifyStorageError(err error, request *http.Request, key string) error {
	return s.NotifyHTTPError(http.StatusBadGateway, "Object Storage Error", err, request, map[string]string{
		"Key": key,
	})
}

// NotifyWarning is for problems not tied to a request, such as a failed
// background probe.
func (s *SlackNotifier) NotifyWarning(title string, message string, context map[string]string) error {
	return s.SendRichNotification(
		fmt.Sprintf(":warning: %s", title),
		message,
		"warning",
		context,
	)
}
