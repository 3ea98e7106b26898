package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobscraper/internal/models"
)

const maxDescriptionRunes = 600

// sender is the part of the bot API used here
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

var markdownReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// escapeURL escapes the characters MarkdownV2 reserves inside a link target
func escapeURL(u string) string {
	return strings.NewReplacer("\\", "\\\\", ")", "\\)").Replace(u)
}

func orNA(s *string) string {
	if v := strings.TrimSpace(models.Value(s)); v != "" {
		return v
	}
	return "N/A"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// FormatJob renders a job as a MarkdownV2 message
func FormatJob(job models.JobInformation) string {
	//build message chunks
	msgText := fmt.Sprintf("💼 *%s*\n", escapeMarkdown(orNA(job.JobTitle)))
	msgText += fmt.Sprintf("🏢 %s\n", escapeMarkdown(orNA(job.CompanyName)))

	if website := models.Value(job.CompanyWebsite); website != "" {
		msgText += fmt.Sprintf("🌐 [Website](%s)\n", escapeURL(website))
	}
	if applyURL := models.Value(job.ApplyURL); applyURL != "" {
		msgText += fmt.Sprintf("🔗 [Apply](%s)\n", escapeURL(applyURL))
	}
	if desc := strings.TrimSpace(models.Value(job.JobDescription)); desc != "" {
		msgText += fmt.Sprintf("📄 %s\n", escapeMarkdown(truncate(desc, maxDescriptionRunes)))
	}
	return msgText
}

func (b *Bot) SendJob(job models.JobInformation) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatJob(job))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if applyURL := models.Value(job.ApplyURL); applyURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("🔗 Apply", applyURL),
			),
		)
	}

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
