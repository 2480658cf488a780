package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"watch-catalog/internal/domain"
	"watch-catalog/internal/email"
	"watch-catalog/internal/repository"
)

// AuthService implementa registro, login y cambios de password locales.
type AuthService struct {
	logger   *zap.Logger
	members  repository.MemberRepository
	hasher   *CredentialHasher
	tokens   *SessionTokenIssuer
	notifier email.Sender
}

func NewAuthService(logger *zap.Logger, members repository.MemberRepository, hasher *CredentialHasher, notifier email.Sender) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		logger:   logger,
		members:  members,
		hasher:   hasher,
		tokens:   NewSessionTokenIssuer(hasher),
		notifier: notifier,
	}
}

type RegisterInput struct {
	Membername string
	Email      string
	Password   string
}

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.Member, error) {
	membername := strings.TrimSpace(input.Membername)
	emailAddr := normalizeEmail(input.Email)
	if membername == "" || emailAddr == "" || input.Password == "" {
		return domain.Member{}, ErrMissingFields
	}

	_, err := s.members.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.Member{}, ErrMemberExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Member{}, err
	}

	salt, err := NewSalt()
	if err != nil {
		return domain.Member{}, err
	}

	member, err := s.members.Create(ctx, domain.Member{
		Membername: membername,
		Email:      emailAddr,
		YOB:        0,
		IsAdmin:    false,
		Authentication: &domain.Authentication{
			Password: s.hasher.Hash(salt, input.Password),
			Salt:     salt,
		},
	})
	if err != nil {
		return domain.Member{}, err
	}
	member.Authentication = nil
	return member, nil
}

// Login verifica el password y emite un token de sesión nuevo, que reemplaza
// al anterior.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.Member, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.Member{}, ErrMissingFields
	}

	member, err := s.members.GetByEmailWithCredentials(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, ErrCredentialsMissing
		}
		return domain.Member{}, err
	}
	if !member.HasLocalCredentials() {
		return domain.Member{}, ErrCredentialsMissing
	}
	if !s.hasher.Matches(member.Authentication.Salt, password, member.Authentication.Password) {
		return domain.Member{}, ErrInvalidCredentials
	}

	_, token, err := s.tokens.Issue(member.ID)
	if err != nil {
		return domain.Member{}, err
	}
	if err := s.members.UpdateSessionToken(ctx, member.ID, token); err != nil {
		return domain.Member{}, err
	}

	member.GoogleID = ""
	member.Authentication = &domain.Authentication{SessionToken: token}
	return member, nil
}

// ResetPassword reemplaza salt y hash sin tocar el token de sesión.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || newPassword == "" {
		return ErrMissingFields
	}

	member, err := s.members.GetByEmailWithCredentials(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCredentialsMissing
		}
		return err
	}
	if member.Authentication == nil || member.Authentication.Salt == "" {
		return ErrCredentialsMissing
	}

	return s.storePassword(ctx, member.ID, newPassword)
}

// ChangePassword actúa siempre sobre el miembro autenticado.
func (s *AuthService) ChangePassword(ctx context.Context, memberID string, input ChangePasswordInput) error {
	if input.CurrentPassword == "" || input.NewPassword == "" || input.ConfirmNewPassword == "" {
		return ErrMissingFields
	}
	if input.NewPassword != input.ConfirmNewPassword {
		return ErrPasswordMismatch
	}

	member, err := s.members.GetByIDWithCredentials(ctx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCredentialsMissing
		}
		return err
	}
	if !member.HasLocalCredentials() {
		return ErrCredentialsMissing
	}
	if !s.hasher.Matches(member.Authentication.Salt, input.CurrentPassword, member.Authentication.Password) {
		return ErrWrongPassword
	}

	if err := s.storePassword(ctx, member.ID, input.NewPassword); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendPasswordChanged(ctx, member.Email, time.Now().UTC()); err != nil {
			s.logger.Warn("send password changed notice failed", zap.Error(err), zap.String("member_id", member.ID))
		}
	}
	return nil
}

func (s *AuthService) storePassword(ctx context.Context, memberID, password string) error {
	salt, err := NewSalt()
	if err != nil {
		return err
	}
	return s.members.UpdatePassword(ctx, memberID, s.hasher.Hash(salt, password), salt)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
