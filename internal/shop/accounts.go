package shop

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/events"
	"eterno-store/internal/models"

	"gorm.io/gorm"
)

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case utf8.RuneCountInString(username) < 3:
		return nil, apperr.Validation("Username must be at least 3 characters")
	case utf8.RuneCountInString(username) > 80:
		return nil, apperr.Validation("Username must be at most 80 characters")
	case len(email) > 120 || !emailPattern.MatchString(email):
		return nil, apperr.Validation("Invalid email address")
	case len(password) < 6:
		return nil, apperr.Validation("Password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return apperr.Internal("Failed to check username", err)
		}
		if count > 0 {
			return apperr.Conflict("Username already exists")
		}
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return apperr.Internal("Failed to check email", err)
		}
		if count > 0 {
			return apperr.Conflict("Email already registered")
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperr.Internal("Failed to create account", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{Type: events.UserRegistered, Reference: user.Username, ActorID: user.ID})
	return &user, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return &user, nil
}

// GetUser loads the caller's own account.
func (s *Service) GetUser(ctx context.Context, p auth.Principal) (*models.User, error) {
	if !p.Authenticated() {
		return nil, apperr.Unauthorized("Please login")
	}
	var user models.User
	err := s.db.WithContext(ctx).First(&user, p.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load user", err)
	}
	return &user, nil
}
