package handler

import (
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/service"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const addLeadUsage = "❌ Usage: /addlead Business | Owner | Phone | Address | lat | lng\n" +
	"Example: /addlead Sharma Sweets | Ravi Sharma | 919800000000 | Boring Road, Patna | 25.6100 | 85.1200"

// parseLeadArgs reads "Business | Owner | Phone | Address | lat | lng".
func parseLeadArgs(args string) (*models.Lead, error) {
	parts := strings.Split(args, "|")
	if len(parts) != 6 {
		return nil, fmt.Errorf("expected 6 fields separated by |, got %d", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	lat, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q", parts[4])
	}
	lng, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q", parts[5])
	}

	return &models.Lead{
		BusinessName: parts[0],
		OwnerName:    parts[1],
		Phone:        parts[2],
		Address:      parts[3],
		Latitude:     lat,
		Longitude:    lng,
	}, nil
}

// parseID reads a positive numeric id.
func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

// matchLeadStatus finds a lead status ignoring case and extra spaces.
func matchLeadStatus(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), " ")
	for _, status := range models.LeadStatuses {
		if strings.EqualFold(status, s) {
			return status, true
		}
	}
	return "", false
}

func formatLead(lead *models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s [%s]\n", lead.ID, lead.BusinessName, lead.Status)
	if lead.OwnerName != "" {
		fmt.Fprintf(&b, "👤 %s\n", lead.OwnerName)
	}
	if lead.Address != "" {
		fmt.Fprintf(&b, "📍 %s\n", lead.Address)
	}
	if lead.Phone != "" {
		fmt.Fprintf(&b, "📞 %s\n", lead.CallLink())
		fmt.Fprintf(&b, "💬 %s\n", lead.WhatsAppLink())
	}
	fmt.Fprintf(&b, "🗺 %s", lead.MapsLink())
	return b.String()
}

func (h *Handler) addLead(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if h.currentUser(chatID) == nil {
		return
	}

	lead, err := parseLeadArgs(args)
	if err != nil {
		h.reply(chatID, addLeadUsage)
		return
	}

	if err := h.leadService.Create(lead); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			h.reply(chatID, "❌ "+err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to create lead")
		h.reply(chatID, "❌ Could not save the lead.")
		return
	}

	h.reply(chatID, "✅ Lead added:\n\n"+formatLead(lead)+
		fmt.Sprintf("\n\nBook a visit with /schedule %d", lead.ID))
}

func (h *Handler) showLeads(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if h.currentUser(chatID) == nil {
		return
	}

	leads, err := h.leadService.ListCallable()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list leads")
		h.reply(chatID, "❌ Could not load the calling list.")
		return
	}
	if len(leads) == 0 {
		h.reply(chatID, "📭 The calling list is empty.")
		return
	}

	blocks := []string{"📇 Calling list:"}
	for i := range leads {
		blocks = append(blocks, formatLead(&leads[i]))
	}
	h.reply(chatID, strings.Join(blocks, "\n\n"))
}

func (h *Handler) setLeadStatus(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if h.currentUser(chatID) == nil {
		return
	}

	idStr, statusStr, _ := strings.Cut(strings.TrimSpace(args), " ")
	leadID, err := parseID(idStr)
	if err != nil {
		h.reply(chatID, "❌ Usage: /setstatus <leadID> <status>")
		return
	}
	status, ok := matchLeadStatus(statusStr)
	if !ok {
		h.reply(chatID, "❌ Unknown status. Use one of: "+strings.Join(models.LeadStatuses, ", "))
		return
	}

	h.applyLeadStatus(chatID, leadID, status)
}

func (h *Handler) newWorkOrder(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if h.currentUser(chatID) == nil {
		return
	}
	leadID, err := parseID(args)
	if err != nil {
		h.reply(chatID, "❌ Usage: /order <leadID>")
		return
	}
	h.applyLeadStatus(chatID, leadID, models.LeadStatusConverted)
}

func (h *Handler) demoteLead(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if h.currentUser(chatID) == nil {
		return
	}
	leadID, err := parseID(args)
	if err != nil {
		h.reply(chatID, "❌ Usage: /demotelead <leadID>")
		return
	}
	h.applyLeadStatus(chatID, leadID, models.LeadStatusOldLead)
}

func (h *Handler) applyLeadStatus(chatID int64, leadID uint, status string) {
	var err error
	switch status {
	case models.LeadStatusConverted:
		err = h.leadService.NewWorkOrder(leadID)
	case models.LeadStatusOldLead:
		err = h.leadService.Demote(leadID)
	default:
		err = h.leadService.UpdateStatus(leadID, status)
	}

	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		h.reply(chatID, fmt.Sprintf("❌ Lead #%d not found.", leadID))
	case err != nil:
		h.logger.WithError(err).WithField("lead_id", leadID).Error("Failed to update lead")
		h.reply(chatID, "❌ Could not update the lead.")
	default:
		h.reply(chatID, fmt.Sprintf("✅ Lead #%d is now %s.", leadID, status))
	}
}

func (h *Handler) showClients(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if h.currentUser(chatID) == nil {
		return
	}

	clients, err := h.leadService.ListClients()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list clients")
		h.reply(chatID, "❌ Could not load clients.")
		return
	}
	if len(clients) == 0 {
		h.reply(chatID, "📭 No converted clients yet.")
		return
	}

	blocks := []string{"🤝 Clients:"}
	for _, c := range clients {
		marker := "✅"
		if c.Neglected {
			marker = "⚠️ Neglected"
		}
		blocks = append(blocks, fmt.Sprintf("%s #%d %s\n🕒 Last contact %d days ago\n📞 %s\n💬 %s",
			marker, c.Lead.ID, c.Lead.BusinessName, c.DaysSinceContact, c.CallLink, c.WhatsAppLink))
	}
	h.reply(chatID, strings.Join(blocks, "\n\n"))
}
