package handler

import (
	"field-sales-bot/internal/models"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// parseLeaveArgs reads "<date> <reason...>".
func parseLeaveArgs(args string, now time.Time) (time.Time, string, error) {
	dateStr, reason, _ := strings.Cut(strings.TrimSpace(args), " ")
	date, err := parseDate(dateStr, now)
	if err != nil {
		return time.Time{}, "", err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return time.Time{}, "", fmt.Errorf("a reason is required")
	}
	return date, reason, nil
}

func (h *Handler) addHoliday(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor := h.currentAdmin(chatID)
	if actor == nil {
		return
	}

	date, reason, err := parseLeaveArgs(args, time.Now())
	if err != nil {
		h.reply(chatID, "❌ Usage: /holiday <dd.mm.yyyy> <reason>\nExample: /holiday 25.10.2024 Diwali")
		return
	}

	record, err := h.leaveService.AddGlobal(actor, date, reason)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	h.reply(chatID, fmt.Sprintf("🏢 Office closed on %s: %s", record.Date.Format(displayDateLayout), record.Reason))
}

func (h *Handler) addLeave(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	date, reason, err := parseLeaveArgs(args, time.Now())
	if err != nil {
		h.reply(chatID, "❌ Usage: /leave <dd.mm.yyyy> <reason>\nExample: /leave 03.06.2024 Family function")
		return
	}

	record, err := h.leaveService.AddPersonal(actor, date, reason)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	h.reply(chatID, fmt.Sprintf("🏖️ Leave saved for %s. Colleagues will only see \"Busy\".",
		record.Date.Format(displayDateLayout)))
}

func (h *Handler) addLeaveFor(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor := h.currentAdmin(chatID)
	if actor == nil {
		return
	}

	staffStr, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	staffID, err := parseID(staffStr)
	if err != nil {
		h.reply(chatID, "❌ Usage: /leavefor <staffID> <dd.mm.yyyy> <reason>")
		return
	}
	date, reason, err := parseLeaveArgs(rest, time.Now())
	if err != nil {
		h.reply(chatID, "❌ Usage: /leavefor <staffID> <dd.mm.yyyy> <reason>")
		return
	}

	record, err := h.leaveService.AddPersonalFor(actor, staffID, date, reason)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	h.reply(chatID, fmt.Sprintf("🏖️ Leave saved for staff #%d on %s.", staffID, record.Date.Format(displayDateLayout)))
}

func (h *Handler) showLeaves(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	views, err := h.leaveService.Upcoming(actor, h.visitService.HorizonDays())
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	if len(views) == 0 {
		h.reply(chatID, "🌤 No leave or closures in the coming days.")
		return
	}

	lines := []string{"🏖️ Upcoming leave:"}
	for _, v := range views {
		who := "everyone"
		if v.Scope == models.LeaveScopePersonal && v.StaffID != nil {
			who = fmt.Sprintf("staff #%d", *v.StaffID)
		}
		lines = append(lines, fmt.Sprintf("#%d %s · %s · %s", v.ID, v.Date.Format(displayDateLayout), who, v.Reason))
	}
	h.reply(chatID, strings.Join(lines, "\n"))
}

func (h *Handler) cancelLeave(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	id, err := parseID(strings.TrimSpace(args))
	if err != nil {
		h.reply(chatID, "❌ Usage: /cancelleave <leaveID>\nIds are listed by /leaves.")
		return
	}

	record, err := h.leaveService.Remove(actor, id)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	h.reply(chatID, fmt.Sprintf("🗑 Leave on %s removed.", record.Date.Format(displayDateLayout)))
}

func (h *Handler) loadClosures(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if h.currentAdmin(chatID) == nil {
		return
	}

	path := strings.TrimSpace(args)
	if path == "" && h.config != nil {
		path = h.config.ClosuresFile
	}
	if path == "" {
		h.reply(chatID, "❌ Usage: /loadclosures <file>\nOr set CLOSURES_FILE.")
		return
	}

	count, err := h.leaveService.LoadClosures(path)
	if err != nil {
		h.logger.WithError(err).WithField("path", path).Error("Failed to load closures")
		h.reply(chatID, "❌ Could not import closures: "+err.Error())
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ Imported %d office closure days.", count))
}
