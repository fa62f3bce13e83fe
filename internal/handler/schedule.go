package handler

import (
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/scheduling"
	"field-sales-bot/internal/service"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes.
const (
	callbackDate    = "date"
	callbackBlocked = "blocked"
	callbackSlot    = "slot"
	callbackTaken   = "taken"
	callbackDeal    = "deal"
)

// scheduleCallback is the decoded data of a date, blocked or slot button.
type scheduleCallback struct {
	Kind    string
	LeadID  uint
	StaffID uint
	Date    time.Time
	Slot    int
}

func encodeDayCallback(kind string, leadID, staffID uint, date time.Time) string {
	return fmt.Sprintf("%s:%d:%d:%s", kind, leadID, staffID, date.Format(models.DateLayout))
}

func encodeSlotCallback(leadID, staffID uint, date time.Time, slot int) string {
	return fmt.Sprintf("%s:%d:%d:%s:%d", callbackSlot, leadID, staffID, date.Format(models.DateLayout), slot)
}

func parseScheduleCallback(data string) (scheduleCallback, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 4 {
		return scheduleCallback{}, fmt.Errorf("malformed callback %q", data)
	}

	cb := scheduleCallback{Kind: parts[0]}
	switch {
	case cb.Kind == callbackSlot && len(parts) == 5:
	case (cb.Kind == callbackDate || cb.Kind == callbackBlocked) && len(parts) == 4:
	default:
		return scheduleCallback{}, fmt.Errorf("malformed callback %q", data)
	}

	leadID, err := parseID(parts[1])
	if err != nil {
		return scheduleCallback{}, err
	}
	staffID, err := parseID(parts[2])
	if err != nil {
		return scheduleCallback{}, err
	}
	date, err := models.ParseDay(parts[3])
	if err != nil {
		return scheduleCallback{}, err
	}
	cb.LeadID, cb.StaffID, cb.Date = leadID, staffID, date

	if cb.Kind == callbackSlot {
		slot, err := strconv.Atoi(parts[4])
		if err != nil || slot < 0 {
			return scheduleCallback{}, fmt.Errorf("invalid slot in %q", data)
		}
		cb.Slot = slot
	}
	return cb, nil
}

func dayMarker(status scheduling.DayState) string {
	switch status {
	case scheduling.DayBlocked:
		return "🔴"
	case scheduling.DayPartial:
		return "🟡"
	}
	return "🟢"
}

// dateKeyboard lays the availability grid out two days per row.
func dateKeyboard(leadID, staffID uint, days []service.AvailabilityDay) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, d := range days {
		kind := callbackDate
		if !d.Bookable() {
			kind = callbackBlocked
		}
		label := dayMarker(d.Status) + " " + dayLabel(d.Date)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, encodeDayCallback(kind, leadID, staffID, d.Date)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// slotKeyboard puts one slot per row. Taken slots stay visible but inert.
func slotKeyboard(leadID, staffID uint, date time.Time, slots []scheduling.SlotStatus) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(slots))
	for i, s := range slots {
		button := tgbotapi.NewInlineKeyboardButtonData("🕒 "+s.Slot, encodeSlotCallback(leadID, staffID, date, i))
		if s.Taken {
			button = tgbotapi.NewInlineKeyboardButtonData("❌ "+s.Slot, callbackTaken)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// rejectionMessage explains a booking rejection to viewer, or returns ""
// when err is not a rejection.
func rejectionMessage(err error, viewer *models.User) string {
	var rejection *scheduling.RejectionError
	if !errors.As(err, &rejection) {
		return ""
	}

	switch {
	case errors.Is(rejection.Reason, scheduling.ErrOutOfServiceArea):
		return fmt.Sprintf("📏 Out of service area: the lead is %.1f km from the office.", rejection.DistanceKm)
	case errors.Is(rejection.Reason, scheduling.ErrLeaveUnavailable):
		if rejection.Leave == nil {
			return "⛔ " + scheduling.MaskedLeaveText
		}
		return "⛔ " + scheduling.LeaveReasonFor(rejection.Leave, viewer).Text
	case errors.Is(rejection.Reason, scheduling.ErrCapacityExceeded):
		return fmt.Sprintf("⛔ Fully booked: %d visits are already scheduled that day.", scheduling.DailyVisitCap)
	case errors.Is(rejection.Reason, scheduling.ErrSlotTaken):
		return "⛔ That slot is already taken. Pick another one."
	case errors.Is(rejection.Reason, scheduling.ErrUnknownSlot):
		return "❌ Unknown time slot."
	case errors.Is(rejection.Reason, scheduling.ErrInvalidLocation):
		return "❌ The lead has no valid location. Re-add it with correct coordinates."
	}
	return "⛔ " + rejection.Error()
}

func (h *Handler) startScheduling(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	actor := h.currentUser(chatID)
	if actor == nil {
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		h.reply(chatID, "❌ Usage: /schedule <leadID> [staffID]")
		return
	}
	leadID, err := parseID(fields[0])
	if err != nil {
		h.reply(chatID, "❌ Usage: /schedule <leadID> [staffID]")
		return
	}
	staffID := actor.ID
	if len(fields) == 2 {
		if staffID, err = parseID(fields[1]); err != nil {
			h.reply(chatID, "❌ Usage: /schedule <leadID> [staffID]")
			return
		}
	}
	if !service.CanBookFor(actor, staffID) {
		h.reply(chatID, "❌ Only administrators can book visits for other staff members.")
		return
	}

	check, err := h.visitService.CheckDistance(leadID)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}
	if !check.InRange {
		h.reply(chatID, fmt.Sprintf("📏 Out of service area: the lead is %.1f km from the office (limit %.0f km).",
			check.DistanceKm, check.MaxRadiusKm))
		return
	}

	days, err := h.visitService.Availability(actor, staffID, h.visitService.Today(), h.visitService.HorizonDays())
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return
	}

	text := fmt.Sprintf("📍 Lead #%d is %.1f km from the office.\n🗺 %s\n\n📅 Pick a date:\n🟢 open  🟡 partly booked  🔴 unavailable",
		leadID, check.DistanceKm, check.MapsLink)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = dateKeyboard(leadID, staffID, days)
	h.send(msg)
}

func (h *Handler) handleBlockedCallback(callback *tgbotapi.CallbackQuery) string {
	cb, err := parseScheduleCallback(callback.Data)
	if err != nil {
		return "Unknown action"
	}
	actor := h.currentUser(callback.Message.Chat.ID)
	if actor == nil {
		return ""
	}

	days, err := h.visitService.Availability(actor, cb.StaffID, cb.Date, 1)
	if err != nil || len(days) == 0 {
		return "Unavailable"
	}
	if days[0].Reason != "" {
		return days[0].Reason
	}
	return "Unavailable"
}

func (h *Handler) handleDateCallback(callback *tgbotapi.CallbackQuery) string {
	chatID := callback.Message.Chat.ID
	cb, err := parseScheduleCallback(callback.Data)
	if err != nil {
		h.logger.WithError(err).Warn("Bad date callback")
		return "Unknown action"
	}
	actor := h.currentUser(chatID)
	if actor == nil || !service.CanBookFor(actor, cb.StaffID) {
		return ""
	}

	days, err := h.visitService.Availability(actor, cb.StaffID, cb.Date, 1)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return ""
	}
	if len(days) == 1 && !days[0].Bookable() {
		h.reply(chatID, fmt.Sprintf("⛔ %s: %s", dayLabel(cb.Date), days[0].Reason))
		return ""
	}

	slots, err := h.visitService.Slots(cb.StaffID, cb.Date)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return ""
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🕒 Pick a time slot for %s:", dayLabel(cb.Date)))
	msg.ReplyMarkup = slotKeyboard(cb.LeadID, cb.StaffID, cb.Date, slots)
	h.send(msg)
	return ""
}

func (h *Handler) handleSlotCallback(callback *tgbotapi.CallbackQuery) string {
	chatID := callback.Message.Chat.ID
	cb, err := parseScheduleCallback(callback.Data)
	if err != nil {
		h.logger.WithError(err).Warn("Bad slot callback")
		return "Unknown action"
	}
	actor := h.currentUser(chatID)
	if actor == nil || !service.CanBookFor(actor, cb.StaffID) {
		return ""
	}

	slots, err := h.visitService.Slots(cb.StaffID, cb.Date)
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return ""
	}
	if cb.Slot >= len(slots) {
		h.reply(chatID, "❌ Unknown time slot.")
		return ""
	}
	slot := slots[cb.Slot].Slot

	booking, err := h.visitService.Book(service.BookRequest{
		LeadID:  cb.LeadID,
		StaffID: cb.StaffID,
		Date:    cb.Date,
		Slot:    slot,
	})
	if err != nil {
		h.replyServiceError(chatID, actor, err)
		return ""
	}

	h.clearKeyboard(callback)

	leadName := fmt.Sprintf("Lead #%d", cb.LeadID)
	if lead, err := h.leadService.Get(cb.LeadID); err == nil {
		leadName = lead.BusinessName
	}

	h.reply(chatID, fmt.Sprintf("✅ Visit booked!\n\n🏢 %s\n📅 %s\n🕒 %s\n🆔 %s\n\nAfter the meeting send /done %s",
		leadName, dayLabel(booking.Visit.VisitDate), booking.Visit.TimeSlot, booking.Visit.ID, booking.Visit.ID))
	return "Booked"
}

// replyServiceError turns service and engine errors into chat replies.
func (h *Handler) replyServiceError(chatID int64, viewer *models.User, err error) {
	if text := rejectionMessage(err, viewer); text != "" {
		h.reply(chatID, text)
		return
	}

	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		h.reply(chatID, "❌ Lead not found.")
	case errors.Is(err, service.ErrStaffNotFound):
		h.reply(chatID, "❌ Staff member not found. Ids are listed by /staff.")
	case errors.Is(err, service.ErrVisitNotFound):
		h.reply(chatID, "❌ Visit not found.")
	case errors.Is(err, service.ErrLeaveNotFound):
		h.reply(chatID, "❌ Leave record not found. Ids are listed by /leaves.")
	case errors.Is(err, service.ErrForbidden):
		h.reply(chatID, "❌ Only the assigned staff member or an administrator can do that.")
	case errors.Is(err, service.ErrVisitNotDone):
		h.reply(chatID, "❌ Mark the visit done before recording the deal.")
	case errors.Is(err, models.ErrVisitNotScheduled):
		h.reply(chatID, "❌ This visit is already closed.")
	case errors.Is(err, service.ErrInvalidInput):
		h.reply(chatID, "❌ "+err.Error())
	default:
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Request failed")
		h.reply(chatID, "❌ Something went wrong, try again later.")
	}
}
