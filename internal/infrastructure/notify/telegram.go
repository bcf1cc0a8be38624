package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// TelegramNotifier pushes alert and admin notifications to Telegram chats
// through the sharded dispatcher. It implements ports.Notifier.
//
// Alerts go to the admin channel and, when the alert is assigned to a user
// who has linked a chat, to that user's chat as well. Users link a chat by
// sending "/start <user_id>" to the bot; the chat id is stored on the user
// record.
type TelegramNotifier struct {
	dispatcher  *Dispatcher
	adminChatID int64
	users       ports.UserRepository
	log         zerolog.Logger
}

// NewTelegramNotifier connects the bot, starts the delivery workers and the
// incoming-update loop, and returns the notifier. The context bounds both
// loops.
func NewTelegramNotifier(ctx context.Context, botToken string, adminChatID int64, workers int, users ports.UserRepository, log zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("telegram bot connected")

	d := NewDispatcher(workers, &botSender{bot: bot}, log)
	d.Start(ctx)

	n := &TelegramNotifier{dispatcher: d, adminChatID: adminChatID, users: users, log: log}
	go n.pollUpdates(ctx, bot)
	return n, nil
}

// AlertCreated pushes a formatted alert summary to every chat interested in
// the alert: the admin channel plus the assignee's linked chat.
func (n *TelegramNotifier) AlertCreated(ctx context.Context, alert *domain.Alert) {
	text := formatAlert(alert)
	for _, chatID := range n.alertChats(ctx, alert) {
		n.dispatcher.Enqueue(Message{ChatID: chatID, Text: text})
	}
}

// AdminMessage pushes a plain text message to the admin channel.
func (n *TelegramNotifier) AdminMessage(_ context.Context, text string) {
	n.dispatcher.Enqueue(Message{ChatID: n.adminChatID, Text: text})
}

// alertChats resolves the delivery targets for an alert. The admin channel
// always receives it; the assignee's chat is added when the assigned user
// has linked one and it is not the admin channel itself.
func (n *TelegramNotifier) alertChats(ctx context.Context, alert *domain.Alert) []int64 {
	chats := []int64{n.adminChatID}
	if alert.AssignedTo == nil {
		return chats
	}

	user, err := n.users.FindByID(ctx, alert.AssignedTo.UserID)
	if err != nil {
		n.log.Debug().Err(err).Str("user_id", alert.AssignedTo.UserID).Msg("assignee lookup failed, admin chat only")
		return chats
	}
	if user.TelegramChatID != 0 && user.TelegramChatID != n.adminChatID {
		chats = append(chats, user.TelegramChatID)
	}
	return chats
}

// pollUpdates consumes incoming bot messages and answers commands. Only the
// linking flow mutates state; everything else is informational.
func (n *TelegramNotifier) pollUpdates(ctx context.Context, bot *tgbotapi.BotAPI) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := bot.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			chatID := update.Message.Chat.ID
			if reply := n.commandReply(ctx, chatID, update.Message.Text); reply != "" {
				n.dispatcher.Enqueue(Message{ChatID: chatID, Text: reply})
			}
		}
	}
}

const helpText = "Commands:\n" +
	"/start <user_id> - link this chat to your account\n" +
	"/help - show this message\n\n" +
	"Once linked you will receive alerts assigned to you."

// commandReply handles a single incoming message and returns the reply text,
// or "" when the message warrants no answer.
func (n *TelegramNotifier) commandReply(ctx context.Context, chatID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	switch fields[0] {
	case "/start":
		if len(fields) != 2 {
			return "Send /start <user_id> to link this chat to your account. Your user id is available from the system administrator."
		}
		return n.linkChat(ctx, fields[1], chatID)
	case "/help":
		return helpText
	default:
		return "Unknown command. Send /start <user_id> to link your account or /help for help."
	}
}

// linkChat stores the chat id on the user record so assigned alerts reach
// this chat. Relinking simply overwrites the previous chat id.
func (n *TelegramNotifier) linkChat(ctx context.Context, userID string, chatID int64) string {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "No account found for that user id."
		}
		n.log.Error().Err(err).Str("user_id", userID).Msg("chat link: user lookup failed")
		return "Linking failed, please try again later."
	}

	user.TelegramChatID = chatID
	user.UpdatedAt = time.Now().UTC()
	if err := n.users.Update(ctx, user); err != nil {
		n.log.Error().Err(err).Str("user_id", userID).Msg("chat link: update failed")
		return "Linking failed, please try again later."
	}

	n.log.Info().Str("username", user.Username).Int64("chat_id", chatID).Msg("telegram chat linked")
	return fmt.Sprintf("Linked to account %s. You will now receive alerts assigned to you.", user.Username)
}

func formatAlert(a *domain.Alert) string {
	assignee := "unassigned"
	if a.AssignedTo != nil {
		assignee = a.AssignedTo.Username
	}
	return fmt.Sprintf(
		"🔥 Alert #%s\nType: %s\nSensor: %s\nStatus: %s\nAssigned: %s\n%s",
		a.ID, a.Type, a.SensorID, a.Status, assignee, a.Description,
	)
}

// botSender adapts the Telegram bot API to the Sender interface.
type botSender struct {
	bot *tgbotapi.BotAPI
}

func (s *botSender) Send(chatID int64, text string) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// NopNotifier discards all notifications. Used when no Telegram credentials
// are configured.
type NopNotifier struct{}

func (NopNotifier) AlertCreated(context.Context, *domain.Alert) {}
func (NopNotifier) AdminMessage(context.Context, string)        {}
