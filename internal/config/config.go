package config

import (
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/scheduling"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type BotConfig struct {
	TelegramToken   string
	BaseAdminChatID int64
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	BotDebug        bool

	Office           models.Coordinate
	MaxDistanceKm    float64
	Slots            []string
	HorizonDays      int
	NeglectAfterDays int
	ClosuresFile     string
	CORSOrigins      []string
}

var instance *BotConfig
var once sync.Once

// GetBotConfig loads the configuration once and exits on invalid settings.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads the configuration from the environment.
func Load() (*BotConfig, error) {
	cfg := &BotConfig{
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		BaseAdminChatID: getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),
		DatabaseURL:     getEnv("DATABASE_URL", "field-sales.db"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		BotDebug:        getEnvAsBool("BOT_DEBUG", false),

		Office: models.Coordinate{
			Latitude:  getEnvAsFloat("OFFICE_LAT", scheduling.DefaultOffice.Latitude),
			Longitude: getEnvAsFloat("OFFICE_LNG", scheduling.DefaultOffice.Longitude),
		},
		MaxDistanceKm:    getEnvAsFloat("MAX_DISTANCE_KM", scheduling.DefaultMaxRadiusKm),
		Slots:            getEnvAsList("VISIT_SLOTS", ";", scheduling.DefaultSlots),
		HorizonDays:      int(getEnvAsInt("PLANNING_HORIZON_DAYS", scheduling.DefaultHorizonDays)),
		NeglectAfterDays: int(getEnvAsInt("NEGLECT_AFTER_DAYS", 10)),
		ClosuresFile:     getEnv("CLOSURES_FILE", ""),
		CORSOrigins:      getEnvAsList("CORS_ORIGINS", ",", []string{"*"}),
	}

	if cfg.TelegramToken == "" && cfg.HTTPAddr == "" {
		return nil, errors.New("either TELEGRAM_BOT_TOKEN or HTTP_ADDR must be set")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("could not get db url")
	}
	if !cfg.Office.IsValid() {
		return nil, errors.New("office coordinate is out of range")
	}
	if cfg.MaxDistanceKm <= 0 {
		return nil, errors.New("MAX_DISTANCE_KM must be positive")
	}
	if cfg.HorizonDays < 0 || cfg.HorizonDays > scheduling.MaxHorizonDays {
		return nil, fmt.Errorf("PLANNING_HORIZON_DAYS must be between 0 and %d", scheduling.MaxHorizonDays)
	}
	if cfg.NeglectAfterDays <= 0 {
		return nil, errors.New("NEGLECT_AFTER_DAYS must be positive")
	}

	return cfg, nil
}

// Rules returns the scheduling rules described by the configuration.
func (c *BotConfig) Rules() scheduling.Rules {
	return scheduling.Rules{
		Office:      c.Office,
		MaxRadiusKm: c.MaxDistanceKm,
		Slots:       c.Slots,
	}
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseFloat(valStr, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsList(name, sep string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	var items []string
	for _, item := range strings.Split(valStr, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		out := make([]string, len(defaultVal))
		copy(out, defaultVal)
		return out
	}

	return items
}
