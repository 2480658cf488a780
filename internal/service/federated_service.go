package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"watch-catalog/internal/domain"
	"watch-catalog/internal/repository"
)

// FederatedProfile es la identidad que devuelve el proveedor OAuth.
type FederatedProfile struct {
	ID          string
	DisplayName string
	Email       string
}

// FederatedService busca o crea miembros a partir de un login OAuth y les
// emite un token de sesión local.
type FederatedService struct {
	logger  *zap.Logger
	members repository.MemberRepository
	tokens  *SessionTokenIssuer
}

func NewFederatedService(logger *zap.Logger, members repository.MemberRepository, hasher *CredentialHasher) *FederatedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FederatedService{
		logger:  logger,
		members: members,
		tokens:  NewSessionTokenIssuer(hasher),
	}
}

// SignIn devuelve el miembro con el token recién emitido en
// Authentication.SessionToken.
//
// Un miembro nuevo recibe un token derivado del id del proveedor (aún no
// tiene id propio); uno existente, del id del store.
func (s *FederatedService) SignIn(ctx context.Context, profile FederatedProfile) (domain.Member, error) {
	federatedID := strings.TrimSpace(profile.ID)
	emailAddr := normalizeEmail(profile.Email)
	if federatedID == "" || emailAddr == "" {
		return domain.Member{}, ErrFederatedProfile
	}

	member, err := s.members.GetByFederatedID(ctx, federatedID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.Member{}, err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		salt, token, err := s.tokens.Issue(federatedID)
		if err != nil {
			return domain.Member{}, err
		}
		created, err := s.members.Create(ctx, domain.Member{
			Membername: strings.TrimSpace(profile.DisplayName),
			Email:      emailAddr,
			GoogleID:   federatedID,
			IsAdmin:    false,
			Authentication: &domain.Authentication{
				Salt:         salt,
				SessionToken: token,
			},
		})
		if err != nil {
			return domain.Member{}, err
		}
		s.logger.Info("federated member created", zap.String("member_id", created.ID))
		created.Authentication = &domain.Authentication{SessionToken: token}
		return created, nil
	}

	_, token, err := s.tokens.Issue(member.ID)
	if err != nil {
		return domain.Member{}, err
	}
	if err := s.members.UpdateSessionToken(ctx, member.ID, token); err != nil {
		return domain.Member{}, err
	}
	member.Authentication = &domain.Authentication{SessionToken: token}
	return member, nil
}
