package handler

import (
	"field-sales-bot/internal/config"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/repository"
	"field-sales-bot/internal/scheduling"
	"field-sales-bot/internal/service"
	"path/filepath"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminChat = int64(100)
	aliceChat = int64(200)
	bobChat   = int64(300)
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	msgs := f.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func (f *fakeSender) lastAnswer(t *testing.T) tgbotapi.CallbackConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if answer, ok := f.sent[i].(tgbotapi.CallbackConfig); ok {
			return answer
		}
	}
	t.Fatal("no callback answer sent")
	return tgbotapi.CallbackConfig{}
}

type testBot struct {
	handler *Handler
	sender  *fakeSender
	users   *service.UserService
	leads   *service.LeadService
	leaves  *service.LeaveService
	visits  *service.VisitService
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bot.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log, _ := logtest.NewNullLogger()

	userRepo, err := repository.NewGormUserRepository(db)
	require.NoError(t, err)
	leadRepo, err := repository.NewGormLeadRepository(db)
	require.NoError(t, err)
	leaveRepo, err := repository.NewGormLeaveRepository(db)
	require.NoError(t, err)
	visitRepo, err := repository.NewGormVisitRepository(db, log)
	require.NoError(t, err)

	b := &testBot{
		sender: &fakeSender{},
		users:  service.NewUserService(userRepo, log),
		leads:  service.NewLeadService(leadRepo, models.DefaultNeglectAfter, log),
		leaves: service.NewLeaveService(leaveRepo, userRepo, log),
		visits: service.NewVisitService(visitRepo, leadRepo, leaveRepo, userRepo,
			scheduling.NewScheduler(scheduling.DefaultRules()), scheduling.DefaultHorizonDays, log),
	}
	b.handler = NewHandler(b.sender, b.users, b.leads, b.leaves, b.visits, &config.BotConfig{}, log)

	require.NoError(t, b.users.InitializeAdmin(adminChat))
	return b
}

func (b *testBot) command(chatID int64, text string) {
	cmd, _, _ := strings.Cut(text, " ")
	b.handler.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID, UserName: "tester"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}})
}

func (b *testBot) text(chatID int64, text string) {
	b.handler.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: chatID, UserName: "tester"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}})
}

func (b *testBot) location(chatID int64, lat, lng float64) {
	b.handler.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 3,
		From:      &tgbotapi.User{ID: chatID, UserName: "tester"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Location:  &tgbotapi.Location{Latitude: lat, Longitude: lng},
	}})
}

func (b *testBot) callback(chatID int64, data string) {
	b.handler.HandleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}})
}

func (b *testBot) user(t *testing.T, chatID int64) *models.User {
	t.Helper()
	user, err := b.users.GetUser(chatID)
	require.NoError(t, err)
	return user
}
