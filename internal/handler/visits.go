package handler

import (
	"field-sales-bot/internal/models"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func visitStatusEmoji(status string) string {
	switch status {
	case models.VisitStatusDone:
		return "✅"
	case models.VisitStatusCancelled:
		return "🚫"
	}
	return "📅"
}

// locationProof formats a shared location as the stored proof of presence.
func locationProof(loc *tgbotapi.Location) string {
	return fmt.Sprintf("%.6f,%.6f", loc.Latitude, loc.Longitude)
}

func encodeDealCallback(visitID string, confirmed bool) string {
	answer := "no"
	if confirmed {
		answer = "yes"
	}
	return callbackDeal + ":" + visitID + ":" + answer
}

func parseDealCallback(data string) (string, bool, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != callbackDeal || parts[1] == "" {
		return "", false, fmt.Errorf("malformed deal callback %q", data)
	}
	switch parts[2] {
	case "yes":
		return parts[1], true, nil
	case "no":
		return parts[1], false, nil
	}
	return "", false, fmt.Errorf("malformed deal callback %q", data)
}

func dealKeyboard(visitID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤝 Deal confirmed", encodeDealCallback(visitID, true)),
			tgbotapi.NewInlineKeyboardButtonData("👎 Not interested", encodeDealCallback(visitID, false)),
		),
	)
}

func (h *Handler) showVisits(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	visits, err := h.visitService.ListVisits(actor)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	if len(visits) == 0 {
		h.reply(chatID, "📭 No visits yet. Book one with /schedule <leadID>.")
		return
	}

	leadNames := make(map[uint]string)
	lines := []string{"🗓 Visits:"}
	for _, v := range visits {
		name, ok := leadNames[v.LeadID]
		if !ok {
			name = fmt.Sprintf("Lead #%d", v.LeadID)
			if lead, err := h.leadService.Get(v.LeadID); err == nil {
				name = lead.BusinessName
			}
			leadNames[v.LeadID] = name
		}

		line := fmt.Sprintf("%s %s %s · %s", visitStatusEmoji(v.Status), dayLabel(v.VisitDate), v.TimeSlot, name)
		if actor.IsAdmin() {
			line += fmt.Sprintf(" · staff #%d", v.StaffID)
		}
		line += "\n   🆔 " + v.ID
		lines = append(lines, line)
	}
	h.reply(chatID, strings.Join(lines, "\n"))
}

// startVisitCompletion asks for the location that proves the visit happened.
func (h *Handler) startVisitCompletion(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	visitID := strings.TrimSpace(args)
	if visitID == "" {
		h.reply(chatID, "❌ Usage: /done <visitID>\nIds are listed by /visits.")
		return
	}

	visit, err := h.visitService.Get(actor, visitID)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	if !visit.IsScheduled() {
		h.reply(chatID, "❌ This visit is already closed.")
		return
	}

	h.userStates[chatID] = stateAwaitingLocation + visit.ID

	msg := tgbotapi.NewMessage(chatID, "📍 Share your current location to confirm the visit.")
	msg.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation("📍 Share location")),
	)
	h.send(msg)
}

func (h *Handler) handleLocationState(message *tgbotapi.Message, visitID string) {
	chatID := message.Chat.ID

	if message.Location == nil {
		h.reply(chatID, "📍 Please use the button to share your location, or send any command to stop.")
		return
	}
	delete(h.userStates, chatID)

	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	visit, err := h.visitService.MarkDone(actor, visitID, locationProof(message.Location))
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}

	done := tgbotapi.NewMessage(chatID, "✅ Visit completed. Location saved: "+visit.GPSProof)
	done.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	h.send(done)

	ask := tgbotapi.NewMessage(chatID, "🤝 How did it go?")
	ask.ReplyMarkup = dealKeyboard(visit.ID)
	h.send(ask)
}

func (h *Handler) cancelVisit(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	visitID := strings.TrimSpace(args)
	if visitID == "" {
		h.reply(chatID, "❌ Usage: /cancelvisit <visitID>")
		return
	}

	visit, err := h.visitService.Cancel(actor, visitID)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	h.reply(chatID, fmt.Sprintf("🚫 Visit on %s %s cancelled. The slot is free again.",
		dayLabel(visit.VisitDate), visit.TimeSlot))
}

func (h *Handler) handleDealCallback(callback *tgbotapi.CallbackQuery) string {
	chatID := callback.Message.Chat.ID
	visitID, confirmed, err := parseDealCallback(callback.Data)
	if err != nil {
		h.logger.WithError(err).Warn("Bad deal callback")
		return "Unknown action"
	}
	actor := h.currentUser(chatID)
	if actor == nil {
		return ""
	}

	status, err := h.visitService.RecordDealOutcome(actor, visitID, confirmed)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return ""
	}

	h.clearKeyboard(callback)
	if status == models.LeadStatusConverted {
		h.reply(chatID, "🎉 Deal confirmed. The lead is now a client.")
	} else {
		h.reply(chatID, "📝 Noted. The lead is marked Not Interested.")
	}
	return status
}
