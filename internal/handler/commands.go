package handler

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.sendStartMessage(message)
	case "help":
		h.sendHelpMessage(message)

	// Staff roster
	case "register":
		h.register(message, args)
	case "me", "myprofile":
		h.showProfile(message)
	case "staff":
		h.showStaff(message)
	case "promote":
		h.promoteToAdmin(message, args)
	case "demote":
		h.demoteToStaff(message, args)

	// Leads and clients
	case "addlead":
		h.addLead(message, args)
	case "leads":
		h.showLeads(message)
	case "setstatus":
		h.setLeadStatus(message, args)
	case "clients":
		h.showClients(message)
	case "order":
		h.newWorkOrder(message, args)
	case "demotelead":
		h.demoteLead(message, args)

	// Visits
	case "schedule":
		h.startScheduling(message, args)
	case "visits":
		h.showVisits(message)
	case "done":
		h.startVisitCompletion(message, args)
	case "cancelvisit":
		h.cancelVisit(message, args)

	// Leave
	case "holiday":
		h.addHoliday(message, args)
	case "leave":
		h.addLeave(message, args)
	case "leavefor":
		h.addLeaveFor(message, args)
	case "leaves":
		h.showLeaves(message)
	case "cancelleave":
		h.cancelLeave(message, args)
	case "loadclosures":
		h.loadClosures(message, args)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, "❌ Unknown command. Use /help to see the available commands.")
}

func (h *Handler) sendStartMessage(message *tgbotapi.Message) {
	text := `👋 Welcome to the field sales desk.

Register with /register First [Last], then:
1. Add prospects with /addlead
2. Work the calling list with /leads and /setstatus
3. Book a visit with /schedule <leadID>
4. After the meeting, close it with /done <visitID> and share your location

Use /help for every command.`

	h.reply(message.Chat.ID, text)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Commands:

👤 Profile:
/register First [Last] - Join the staff roster
/me - Show my profile

📇 Leads:
/addlead Business | Owner | Phone | Address | lat | lng - Add a lead
/leads - Calling list (New, Call Later, Old Lead)
/setstatus <leadID> <status> - Update a lead after a call
    Statuses: New, Call Later, Not Interested, Old Lead, Converted

📅 Visits:
/schedule <leadID> [staffID] - Book a visit (distance check, date, slot)
/visits - Upcoming and past visits
/done <visitID> - Complete a visit, then share your location
/cancelvisit <visitID> - Cancel a scheduled visit

🤝 Clients:
/clients - Converted clients, neglected ones first
/order <leadID> - Record a new work order
/demotelead <leadID> - Move a client back to Old Lead

🏖️ Leave:
/leave <dd.mm.yyyy> <reason> - Add my leave
/leaves - Upcoming leave and office closures
/cancelleave <leaveID> - Remove my leave (admins: any record)

👑 Admin:
/staff - Staff roster with ids
/promote <chatID>, /demote <chatID> - Change roles
/holiday <dd.mm.yyyy> <reason> - Close the office for everyone
/leavefor <staffID> <dd.mm.yyyy> <reason> - Add leave for a staff member
/loadclosures [file] - Import office closures from a JSON calendar`

	h.reply(message.Chat.ID, text)
}
