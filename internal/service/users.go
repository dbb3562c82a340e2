package service

import (
	"bitwise74/dashboard-api/internal/model"
	"bitwise74/dashboard-api/pkg/apperr"
	"bitwise74/dashboard-api/pkg/security"
	"bitwise74/dashboard-api/pkg/util"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgUserExists      = "Registration Error: A user with that e-mail or username already exists."
	MsgUserNotFound    = "Authentication Error: User not found."
	MsgPasswordInvalid = "Authentication Error: Password does not match!"
	MsgResetUnknown    = "Resource Error: User not found."
	MsgResetExpired    = "Resource Error: Reset token has expired."
)

type Users struct {
	DB     *gorm.DB
	Hasher *security.Hasher
	Tokens *security.TokenCodec
	Mailer Mailer
	// ResetTTL is how long a reset token stays valid
	ResetTTL time.Duration
}

func (s *Users) Register(ctx context.Context, username, email, password string) (string, error) {
	var count int64

	err := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).
		Error
	if err != nil {
		return "", fmt.Errorf("failed to check if user is registered, %w", err)
	}

	if count > 0 {
		return "", apperr.Conflict(MsgUserExists)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password, %w", err)
	}

	id, err := util.NewID()
	if err != nil {
		return "", fmt.Errorf("failed to generate user ID, %w", err)
	}

	err = s.DB.WithContext(ctx).Create(&model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", apperr.Conflict(MsgUserExists)
		}

		return "", fmt.Errorf("failed to create user, %w", err)
	}

	return id, nil
}

func (s *Users) byUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := s.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	return &u, nil
}

// Authenticate checks the credentials and returns the user with a fresh
// access token
func (s *Users) Authenticate(ctx context.Context, username, password string) (*model.User, string, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}

	if u == nil {
		return nil, "", apperr.Unauthorized(MsgUserNotFound)
	}

	ok, err := s.Hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, "", apperr.Unauthorized(MsgPasswordInvalid)
	}

	token, err := s.Tokens.Sign(security.Claims{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// RequestReset replaces any pending reset ticket of username with a new one
// and mails the link in the background
func (s *Users) RequestReset(ctx context.Context, username string) error {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return err
	}

	if u == nil {
		return apperr.NotFound(MsgResetUnknown)
	}

	token, err := s.Tokens.SignFor(security.Claims{Username: u.Username, Scope: security.ScopeReset}, s.ResetTTL)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", u.Username).Delete(&model.ResetTicket{}).Error; err != nil {
			return err
		}

		return tx.Create(&model.ResetTicket{Username: u.Username, Token: token}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store reset ticket, %w", err)
	}

	go func() {
		if err := s.Mailer.SendReset(u.Email, u.Username, token); err != nil {
			zap.L().Error("Failed to send password reset mail", zap.Error(err), zap.String("username", u.Username))
		}
	}()

	return nil
}

// ChangePassword consumes the reset ticket matching username and token and
// sets the new password. A ticket can only be used once.
func (s *Users) ChangePassword(ctx context.Context, username, token, password string) error {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return err
	}

	if u == nil {
		return apperr.NotFound(MsgResetUnknown)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := tx.Where("username = ? AND token = ?", u.Username, token).Delete(&model.ResetTicket{})
		if r.Error != nil {
			return fmt.Errorf("failed to consume reset ticket, %w", r.Error)
		}

		if r.RowsAffected == 0 {
			return apperr.Gone(MsgResetExpired)
		}

		err := tx.Model(&model.User{}).
			Where("id = ?", u.ID).
			Update("password_hash", hash).
			Error
		if err != nil {
			return fmt.Errorf("failed to update password, %w", err)
		}

		return nil
	})
}
