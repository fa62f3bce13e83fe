package service

import (
	"errors"
	"field-sales-bot/internal/models"
	"field-sales-bot/internal/repository"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register adds a staff member to the roster with the staff role.
func (s *UserService) Register(chatID int64, username, firstName, lastName string) (*models.User, error) {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}

	user := &models.User{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  strings.TrimSpace(lastName),
		Role:      models.RoleStaff,
	}

	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"chat_id": chatID,
	}).Info("Staff member registered")

	return user, nil
}

// GetUser returns the roster entry for a Telegram chat.
func (s *UserService) GetUser(chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrStaffNotFound
	}
	return user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrStaffNotFound
	}
	return user, nil
}

func (s *UserService) IsAdmin(chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

func (s *UserService) Roster() ([]*models.User, error) {
	return s.repo.GetAll()
}

func (s *UserService) GetAdmins() ([]*models.User, error) {
	return s.repo.GetAdmins()
}

// UpdateRole changes a staff member's role. Only admins may do it.
func (s *UserService) UpdateRole(adminChatID, targetChatID int64, role string) error {
	if role != models.RoleAdmin && role != models.RoleStaff {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	admin, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if !admin.IsAdmin() {
		return ErrForbidden
	}

	if err := s.repo.UpdateRole(targetChatID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"admin_chat_id":  adminChatID,
		"target_chat_id": targetChatID,
		"role":           role,
	}).Info("Role updated")

	return nil
}

// InitializeAdmin makes sure the configured chat is an admin.
func (s *UserService) InitializeAdmin(adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsAdmin() {
			return nil
		}
		return s.repo.UpdateRole(adminChatID, models.RoleAdmin)
	}

	return s.repo.Create(&models.User{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Administrator",
		Role:      models.RoleAdmin,
	})
}

// FormatUserInfo renders a profile card.
func (s *UserService) FormatUserInfo(user *models.User) string {
	var lines []string

	lines = append(lines, "👤 Profile")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 Staff ID: %d", user.ID))
	lines = append(lines, fmt.Sprintf("💬 Chat ID: %d", user.ChatID))
	if user.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Username: @%s", user.Username))
	}
	lines = append(lines, fmt.Sprintf("👨‍💼 Name: %s", user.DisplayName()))

	roleEmoji := "👤"
	if user.IsAdmin() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Role: %s", roleEmoji, user.Role))

	return strings.Join(lines, "\n")
}

// FormatRoster renders the staff list with the ids used by other commands.
func (s *UserService) FormatRoster() (string, error) {
	users, err := s.Roster()
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "📭 No staff registered yet.", nil
	}

	var lines []string
	lines = append(lines, "📋 Staff roster:")
	lines = append(lines, "")

	admins := 0
	for _, user := range users {
		roleEmoji := "👤"
		if user.IsAdmin() {
			roleEmoji = "👑"
			admins++
		}

		info := fmt.Sprintf("%s #%d %s", roleEmoji, user.ID, user.DisplayName())
		if user.Username != "" {
			info += fmt.Sprintf(" (@%s)", user.Username)
		}
		info += fmt.Sprintf(" - chat %d", user.ChatID)
		lines = append(lines, info)
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("📊 Total: %d, admins: %d", len(users), admins))

	return strings.Join(lines, "\n"), nil
}
