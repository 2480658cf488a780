package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"watch-catalog/internal/repository/repotest"
)

func newTestAuthService() (*AuthService, *repotest.MemberStore, *mockNotifier) {
	repo := repotest.NewMemberStore()
	notifier := &mockNotifier{}
	svc := NewAuthService(zap.NewNop(), repo, NewCredentialHasher("app-secret"), notifier)
	return svc, repo, notifier
}

func TestAuthServiceRegister(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	member, err := svc.Register(context.Background(), RegisterInput{Membername: "a", Email: " A@x.com ", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if member.Email != "a@x.com" || member.IsAdmin || member.YOB != 0 {
		t.Fatalf("unexpected member: %+v", member)
	}
	if member.Authentication != nil {
		t.Fatalf("register response must not carry credentials")
	}

	stored, _ := repo.Stored(member.ID)
	if !stored.HasLocalCredentials() {
		t.Fatalf("expected stored salt and hash")
	}
	if stored.Authentication.Password == "p1" {
		t.Fatalf("password stored in clear")
	}
}

func TestAuthServiceRegister_Errors(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Membername: "b", Email: "a@x.com", Password: "p2"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthServiceRegisterThenLogin(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for wrong password, got %v", err)
	}

	member, err := svc.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if member.ID != registered.ID {
		t.Fatalf("unexpected member id %s", member.ID)
	}
	if member.Authentication == nil || member.Authentication.SessionToken == "" {
		t.Fatalf("expected session token in response")
	}
	if member.Authentication.Password != "" || member.Authentication.Salt != "" {
		t.Fatalf("login response must not carry password or salt")
	}

	resolved, err := repo.GetBySessionToken(ctx, member.Authentication.SessionToken)
	if err != nil || resolved.ID != member.ID {
		t.Fatalf("token does not resolve to member: %v", err)
	}
}

func TestAuthServiceLogin_SecondLoginReplacesToken(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := svc.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	second, err := svc.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if first.Authentication.SessionToken == second.Authentication.SessionToken {
		t.Fatalf("expected fresh token per login")
	}
	if _, err := repo.GetBySessionToken(ctx, first.Authentication.SessionToken); err == nil {
		t.Fatalf("first token must no longer resolve")
	}
	if _, err := repo.GetBySessionToken(ctx, second.Authentication.SessionToken); err != nil {
		t.Fatalf("second token must resolve: %v", err)
	}
}

func TestAuthServiceLogin_ConcurrentLastWriterWins(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	const n = 8
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := svc.Login(ctx, "a@x.com", "p1")
			if err != nil {
				t.Errorf("login: %v", err)
				return
			}
			tokens[i] = m.Authentication.SessionToken
		}(i)
	}
	wg.Wait()

	stored, _ := repo.Stored(registered.ID)
	valid := 0
	for _, tok := range tokens {
		if tok == stored.Authentication.SessionToken {
			valid++
		}
	}
	if valid != 1 {
		t.Fatalf("expected exactly one surviving token, got %d", valid)
	}
}

func TestAuthServiceLogin_Errors(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Login(ctx, "", "p1"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@x.com", "p1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown email, got %v", err)
	}

	// Miembro creado solo por OAuth: salt sin password.
	if _, err := repo.Create(ctx, oauthOnlyMember("g@x.com")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Login(ctx, "g@x.com", "anything"); !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected credentials missing, got %v", err)
	}
}

func TestAuthServiceResetPassword(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := svc.Login(ctx, "a@x.com", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	before, _ := repo.Stored(session.ID)

	if err := svc.ResetPassword(ctx, "a@x.com", "p2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	after, _ := repo.Stored(session.ID)
	if after.Authentication.Salt == before.Authentication.Salt {
		t.Fatalf("expected new salt")
	}
	if after.Authentication.SessionToken != session.Authentication.SessionToken {
		t.Fatalf("reset must not touch the session token")
	}
	if _, err := svc.Login(ctx, "a@x.com", "p1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must fail, got %v", err)
	}
	if _, err := svc.Login(ctx, "a@x.com", "p2"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}

	if err := svc.ResetPassword(ctx, "missing@x.com", "p2"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "a@x.com", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, repo, notifier := newTestAuthService()
	ctx := context.Background()
	member, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	before, _ := repo.Stored(member.ID)

	err = svc.ChangePassword(ctx, member.ID, ChangePasswordInput{CurrentPassword: "p1", NewPassword: "n1", ConfirmNewPassword: "n2"})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	unchanged, _ := repo.Stored(member.ID)
	if unchanged.Authentication.Password != before.Authentication.Password {
		t.Fatalf("mismatch must not modify the stored hash")
	}

	err = svc.ChangePassword(ctx, member.ID, ChangePasswordInput{CurrentPassword: "bad", NewPassword: "n1", ConfirmNewPassword: "n1"})
	if !errors.Is(err, ErrWrongPassword) || !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected wrong password, got %v", err)
	}

	err = svc.ChangePassword(ctx, member.ID, ChangePasswordInput{CurrentPassword: "p1", NewPassword: "n1", ConfirmNewPassword: "n1"})
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := svc.Login(ctx, "a@x.com", "n1"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
	if notifier.calls != 1 || notifier.lastTo != "a@x.com" {
		t.Fatalf("expected one notice to a@x.com, got %d to %q", notifier.calls, notifier.lastTo)
	}
}

func TestAuthServiceChangePassword_NotifierFailureIgnored(t *testing.T) {
	svc, _, notifier := newTestAuthService()
	notifier.err = errors.New("smtp down")
	ctx := context.Background()
	member, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	err = svc.ChangePassword(ctx, member.ID, ChangePasswordInput{CurrentPassword: "p1", NewPassword: "n1", ConfirmNewPassword: "n1"})
	if err != nil {
		t.Fatalf("expected success despite notifier error, got %v", err)
	}
}

func TestAuthServiceChangePassword_MissingCredentials(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()
	member, err := repo.Create(ctx, oauthOnlyMember("g@x.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.ChangePassword(ctx, member.ID, ChangePasswordInput{CurrentPassword: "x", NewPassword: "n1", ConfirmNewPassword: "n1"})
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected credentials missing, got %v", err)
	}
	err = svc.ChangePassword(ctx, member.ID, ChangePasswordInput{NewPassword: "n1", ConfirmNewPassword: "n1"})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
}

func TestAuthServiceLogin_RepeatedCorrectLoginsSucceed(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	member, err := svc.Register(ctx, RegisterInput{Membername: "a", Email: "a@x.com", Password: "p1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	for i := 1; i <= 12; i++ {
		if _, err := svc.Login(ctx, "a@x.com", "bad"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", i, err)
		}
		got, err := svc.Login(ctx, "a@x.com", "p1")
		if err != nil {
			t.Fatalf("login #%d with correct password failed: %v", i, err)
		}
		stored, _ := repo.Stored(member.ID)
		if stored.Authentication.SessionToken != got.Authentication.SessionToken {
			t.Fatalf("login #%d: stored token differs from returned token", i)
		}
	}
}
