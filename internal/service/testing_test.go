package service

import (
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/repository"
	"field-sales-bot/internal/scheduling"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Monday 27 May 2024, 09:00 UTC.
var testNow = time.Date(2024, 5, 27, 9, 0, 0, 0, time.UTC)

var (
	nearOffice = models.Coordinate{Latitude: 25.6000, Longitude: 85.1400}
	farAway    = models.Coordinate{Latitude: 25.8000, Longitude: 85.5000}
)

type fixture struct {
	userRepo  *repository.GormUserRepository
	leadRepo  *repository.GormLeadRepository
	leaveRepo *repository.GormLeaveRepository
	visitRepo *repository.GormVisitRepository

	users  *UserService
	leads  *LeadService
	leaves *LeaveService
	visits *VisitService

	admin *models.User
	alice *models.User
	bob   *models.User
}

func nullLogger() *logrus.Logger {
	l, _ := logtest.NewNullLogger()
	return l
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := openTestDB(t)
	log := nullLogger()
	clock := func() time.Time { return testNow }

	userRepo, err := repository.NewGormUserRepository(db)
	require.NoError(t, err)
	leadRepo, err := repository.NewGormLeadRepository(db)
	require.NoError(t, err)
	leaveRepo, err := repository.NewGormLeaveRepository(db)
	require.NoError(t, err)
	visitRepo, err := repository.NewGormVisitRepository(db, log)
	require.NoError(t, err)

	f := &fixture{
		userRepo:  userRepo,
		leadRepo:  leadRepo,
		leaveRepo: leaveRepo,
		visitRepo: visitRepo,
		users:     NewUserService(userRepo, log),
		leads:     NewLeadService(leadRepo, models.DefaultNeglectAfter, log),
		leaves:    NewLeaveService(leaveRepo, userRepo, log),
		visits: NewVisitService(visitRepo, leadRepo, leaveRepo, userRepo,
			scheduling.NewScheduler(scheduling.DefaultRules()), scheduling.DefaultHorizonDays, log),
	}
	f.leads.now = clock
	f.leaves.now = clock
	f.visits.now = clock

	require.NoError(t, f.users.InitializeAdmin(100))
	f.admin, err = f.users.GetUser(100)
	require.NoError(t, err)
	f.alice, err = f.users.Register(200, "alice", "Alice", "")
	require.NoError(t, err)
	f.bob, err = f.users.Register(300, "bob", "Bob", "Kumar")
	require.NoError(t, err)

	return f
}

func (f *fixture) addLead(t *testing.T, name string, loc models.Coordinate) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		BusinessName: name,
		Phone:        "919800000000",
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
	}
	require.NoError(t, f.leads.Create(lead))
	return lead
}

func day(offset int) time.Time {
	return models.DateOnly(testNow).AddDate(0, 0, offset)
}
