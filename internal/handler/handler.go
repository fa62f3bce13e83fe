package handler

import (
	"errors"
	"field-sales-bot/internal/config"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/service"
	"field-sales-bot/pkg/telegram"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Conversation states kept per chat between messages.
const (
	stateAwaitingFirstName = "awaiting_first_name"
	stateAwaitingLastName  = "awaiting_last_name:"
	stateAwaitingLocation  = "awaiting_location:"
)

type Handler struct {
	bot          telegram.Sender
	userService  *service.UserService
	leadService  *service.LeadService
	leaveService *service.LeaveService
	visitService *service.VisitService
	userStates   map[int64]string
	config       *config.BotConfig
	logger       *logrus.Logger
}

func NewHandler(
	bot telegram.Sender,
	userService *service.UserService,
	leadService *service.LeadService,
	leaveService *service.LeaveService,
	visitService *service.VisitService,
	cfg *config.BotConfig,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		userService:  userService,
		leadService:  leadService,
		leaveService: leaveService,
		visitService: visitService,
		userStates:   make(map[int64]string),
		config:       cfg,
		logger:       logger,
	}
}

// HandleUpdates processes updates until the channel is closed.
func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		h.HandleUpdate(update)
	}
}

func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(update.Message)
}

func (h *Handler) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	h.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"data":    data,
	}).Debug("Callback received")

	answer := ""
	prefix, _, _ := strings.Cut(data, ":")

	switch prefix {
	case callbackDate:
		answer = h.handleDateCallback(callback)
	case callbackSlot:
		answer = h.handleSlotCallback(callback)
	case callbackTaken:
		answer = "This slot is already taken"
	case callbackBlocked:
		answer = h.handleBlockedCallback(callback)
	case callbackDeal:
		answer = h.handleDealCallback(callback)
	default:
		h.logger.WithField("data", data).Warn("Unknown callback")
	}

	// Stops the loading indicator on the button.
	if _, err := h.bot.Request(tgbotapi.NewCallback(callback.ID, answer)); err != nil {
		h.logger.WithError(err).Debug("Failed to answer callback")
	}
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	chatID := message.Chat.ID

	if message.From != nil {
		h.logger.Infof("[%s] %s", message.From.UserName, message.Text)
	}

	if message.IsCommand() {
		// A new command abandons any pending conversation.
		delete(h.userStates, chatID)
		h.handleCommand(message)
		return
	}

	if state, exists := h.userStates[chatID]; exists {
		switch {
		case strings.HasPrefix(state, stateAwaitingLocation):
			h.handleLocationState(message, strings.TrimPrefix(state, stateAwaitingLocation))
		default:
			h.handleProfileState(message, state)
		}
		return
	}

	h.reply(chatID, "🤖 Use /help to see the available commands.")
}

// currentUser returns the registered staff member for the chat, or tells the
// chat to register and returns nil.
func (h *Handler) currentUser(chatID int64) *models.User {
	user, err := h.userService.GetUser(chatID)
	if err != nil {
		if !errors.Is(err, service.ErrStaffNotFound) {
			h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to load user")
			h.reply(chatID, "❌ Could not load your profile, try again later.")
			return nil
		}
		h.reply(chatID, "❌ You are not registered.\nUse /register First [Last] to join the roster.")
		return nil
	}
	return user
}

// currentAdmin is currentUser restricted to admins.
func (h *Handler) currentAdmin(chatID int64) *models.User {
	user := h.currentUser(chatID)
	if user == nil {
		return nil
	}
	if !user.IsAdmin() {
		h.reply(chatID, "❌ Access denied. This command is for administrators only.")
		return nil
	}
	return user
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.WithError(err).Error("Failed to send message")
	}
}

// clearKeyboard removes the inline keyboard from the message a callback came from.
func (h *Handler) clearKeyboard(callback *tgbotapi.CallbackQuery) {
	edit := tgbotapi.NewEditMessageReplyMarkup(
		callback.Message.Chat.ID,
		callback.Message.MessageID,
		tgbotapi.NewInlineKeyboardMarkup(),
	)
	if _, err := h.bot.Request(edit); err != nil {
		h.logger.WithError(err).Debug("Failed to clear keyboard")
	}
}
