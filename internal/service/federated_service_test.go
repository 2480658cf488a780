package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"watch-catalog/internal/domain"
	"watch-catalog/internal/repository/repotest"
)

func oauthOnlyMember(email string) domain.Member {
	return domain.Member{
		Membername:     "g",
		Email:          email,
		GoogleID:       "g-" + email,
		Authentication: &domain.Authentication{Salt: "salt", SessionToken: "tok-" + email},
	}
}

func TestFederatedServiceSignIn_NewMember(t *testing.T) {
	repo := repotest.NewMemberStore()
	hasher := NewCredentialHasher("app-secret")
	svc := NewFederatedService(zap.NewNop(), repo, hasher)

	member, err := svc.SignIn(context.Background(), FederatedProfile{ID: "g-1", DisplayName: "Ana", Email: "Ana@Example.com"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if member.IsAdmin {
		t.Fatalf("new federated member must not be admin")
	}
	if repo.Len() != 1 {
		t.Fatalf("expected exactly one member after first sign in, got %d", repo.Len())
	}
	if member.Email != "ana@example.com" || member.Membername != "Ana" {
		t.Fatalf("unexpected member: %+v", member)
	}

	stored, ok := repo.Stored(member.ID)
	if !ok {
		t.Fatalf("member not stored")
	}
	if stored.GoogleID != "g-1" {
		t.Fatalf("expected federated id stored, got %q", stored.GoogleID)
	}
	if stored.Authentication.Password != "" {
		t.Fatalf("federated member must not have a password")
	}
	token := member.Authentication.SessionToken
	if token == "" || stored.Authentication.SessionToken != token {
		t.Fatalf("expected stored token to match response")
	}
	if token != hasher.Hash(stored.Authentication.Salt, "g-1") {
		t.Fatalf("new member token must be derived from the federated id")
	}

	again, err := svc.SignIn(context.Background(), FederatedProfile{ID: "g-1", DisplayName: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("second sign in: %v", err)
	}
	if again.ID != member.ID || repo.Len() != 1 {
		t.Fatalf("same federated id must not create another member, got %d members", repo.Len())
	}
}

func TestFederatedServiceSignIn_ExistingMember(t *testing.T) {
	repo := repotest.NewMemberStore()
	svc := NewFederatedService(zap.NewNop(), repo, NewCredentialHasher("app-secret"))
	ctx := context.Background()

	first, err := svc.SignIn(ctx, FederatedProfile{ID: "g-1", DisplayName: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	second, err := svc.SignIn(ctx, FederatedProfile{ID: "g-1", DisplayName: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same member, got %s and %s", first.ID, second.ID)
	}
	if first.Authentication.SessionToken == second.Authentication.SessionToken {
		t.Fatalf("expected token to be replaced")
	}
	if _, err := repo.GetBySessionToken(ctx, first.Authentication.SessionToken); err == nil {
		t.Fatalf("previous token must not resolve")
	}
	if repo.Len() != 1 {
		t.Fatalf("expected a single member, got %d", repo.Len())
	}
}

func TestFederatedServiceSignIn_IncompleteProfile(t *testing.T) {
	repo := repotest.NewMemberStore()
	svc := NewFederatedService(zap.NewNop(), repo, NewCredentialHasher("app-secret"))
	cases := []struct {
		name    string
		profile FederatedProfile
	}{
		{name: "missing id", profile: FederatedProfile{Email: "a@x.com"}},
		{name: "missing email", profile: FederatedProfile{ID: "g-1", DisplayName: "Ana"}},
		{name: "blank email", profile: FederatedProfile{ID: "g-1", DisplayName: "Ana", Email: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SignIn(context.Background(), tc.profile); !errors.Is(err, ErrFederatedProfile) {
				t.Fatalf("expected ErrFederatedProfile, got %v", err)
			}
		})
	}
	if repo.Len() != 0 {
		t.Fatalf("incomplete profiles must not create members, got %d", repo.Len())
	}
}
