package handler

import (
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/service"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) showStaff(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if h.currentAdmin(chatID) == nil {
		return
	}

	roster, err := h.userService.FormatRoster()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load roster")
		h.reply(chatID, "❌ Could not load the roster: "+err.Error())
		return
	}
	h.reply(chatID, roster)
}

func (h *Handler) promoteToAdmin(message *tgbotapi.Message, args string) {
	h.changeRole(message, args, models.RoleAdmin, "/promote")
}

func (h *Handler) demoteToStaff(message *tgbotapi.Message, args string) {
	h.changeRole(message, args, models.RoleStaff, "/demote")
}

func (h *Handler) changeRole(message *tgbotapi.Message, args, role, usage string) {
	chatID := message.Chat.ID

	targetChatID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.reply(chatID, "❌ Usage: "+usage+" <chatID>\nChat ids are listed by /staff.")
		return
	}

	if targetChatID == chatID && role == models.RoleStaff {
		h.reply(chatID, "❌ You cannot demote yourself.")
		return
	}

	err = h.userService.UpdateRole(chatID, targetChatID, role)
	switch {
	case errors.Is(err, service.ErrForbidden):
		h.reply(chatID, "❌ Access denied. This command is for administrators only.")
	case errors.Is(err, service.ErrStaffNotFound):
		h.reply(chatID, "❌ No staff member with that chat id.")
	case err != nil:
		h.logger.WithError(err).Error("Failed to change role")
		h.reply(chatID, "❌ Could not change the role: "+err.Error())
	default:
		h.reply(chatID, "✅ Role updated to "+role+".")
	}
}
