package handler

import (
	"errors"
	"field-sales-bot/internal/repository"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// register adds the chat to the roster. Without arguments it asks for the
// name step by step.
func (h *Handler) register(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	if user, err := h.userService.GetUser(chatID); err == nil && user != nil {
		h.reply(chatID, "❌ You are already registered.\nUse /me to see your profile.")
		return
	}

	parts := strings.Fields(args)
	if len(parts) == 0 {
		h.userStates[chatID] = stateAwaitingFirstName
		h.reply(chatID, "👤 Registration\n\nStep 1 of 2:\n✏️ Send your first name:")
		return
	}

	h.createProfile(message, parts[0], strings.Join(parts[1:], " "))
}

func (h *Handler) handleProfileState(message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch {
	case state == stateAwaitingFirstName:
		if text == "" {
			h.reply(chatID, "✏️ Please send your first name as text:")
			return
		}
		h.userStates[chatID] = stateAwaitingLastName + text
		h.reply(chatID, fmt.Sprintf("Step 2 of 2:\n✅ First name saved: %s\n✏️ Now send your last name (or \"-\" to skip):", text))

	case strings.HasPrefix(state, stateAwaitingLastName):
		firstName := strings.TrimPrefix(state, stateAwaitingLastName)
		lastName := text
		if lastName == "-" {
			lastName = ""
		}
		delete(h.userStates, chatID)
		h.createProfile(message, firstName, lastName)

	default:
		delete(h.userStates, chatID)
	}
}

func (h *Handler) createProfile(message *tgbotapi.Message, firstName, lastName string) {
	chatID := message.Chat.ID

	username := ""
	if message.From != nil {
		username = message.From.UserName
	}

	user, err := h.userService.Register(chatID, username, firstName, lastName)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			h.reply(chatID, "❌ You are already registered.")
			return
		}
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to register staff member")
		h.reply(chatID, "❌ Registration failed: "+err.Error())
		return
	}

	h.reply(chatID, "🎉 You are on the roster!\n\n"+h.userService.FormatUserInfo(user))
}

func (h *Handler) showProfile(message *tgbotapi.Message) {
	user := h.currentUser(message.Chat.ID)
	if user == nil {
		return
	}
	h.reply(message.Chat.ID, h.userService.FormatUserInfo(user))
}
