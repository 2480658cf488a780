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

type MemberService struct {
	logger  *zap.Logger
	members repository.MemberRepository
}

func NewMemberService(logger *zap.Logger, members repository.MemberRepository) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{logger: logger, members: members}
}

// MemberPatch contiene solo los campos enviados en PATCH /members/:id.
type MemberPatch struct {
	Membername *string `json:"membername"`
	YOB        *int    `json:"YOB"`
	IsAdmin    *bool   `json:"isAdmin"`
}

func (s *MemberService) List(ctx context.Context, filter repository.MemberFilter) ([]domain.Member, int64, error) {
	members, err := s.members.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.members.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (s *MemberService) Get(ctx context.Context, id string) (domain.Member, error) {
	member, err := s.members.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	return member, nil
}

// IsAdmin relee el flag desde el store; un miembro inexistente no es admin.
func (s *MemberService) IsAdmin(ctx context.Context, id string) (bool, error) {
	member, err := s.members.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return member.IsAdmin, nil
}

// Update aplica el patch. Cambiar isAdmin exige que quien actúa sea admin
// según el store.
func (s *MemberService) Update(ctx context.Context, actorID, id string, patch MemberPatch) (domain.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}

	if patch.Membername != nil {
		name := strings.TrimSpace(*patch.Membername)
		if name == "" {
			return domain.Member{}, ErrMissingFields
		}
		member.Membername = name
	}
	if patch.YOB != nil {
		if *patch.YOB < 0 {
			return domain.Member{}, ErrInvalidYOB
		}
		member.YOB = *patch.YOB
	}
	if patch.IsAdmin != nil && *patch.IsAdmin != member.IsAdmin {
		admin, err := s.IsAdmin(ctx, actorID)
		if err != nil {
			return domain.Member{}, err
		}
		if !admin {
			return domain.Member{}, ErrAdminOnlyField
		}
		member.IsAdmin = *patch.IsAdmin
	}

	updated, err := s.members.UpdateProfile(ctx, member)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	return updated, nil
}

func (s *MemberService) Delete(ctx context.Context, id string) (domain.Member, error) {
	member, err := s.members.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	return member, nil
}

// SetAdmin promueve o degrada por email; lo usa la CLI de administración.
func (s *MemberService) SetAdmin(ctx context.Context, email string, isAdmin bool) (domain.Member, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Member{}, ErrMissingFields
	}
	member, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	member.IsAdmin = isAdmin
	return s.members.UpdateProfile(ctx, member)
}
