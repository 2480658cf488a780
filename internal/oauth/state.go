package oauth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrStateInvalid  = errors.New("oauth state invalid")
	ErrStateExpired  = errors.New("oauth state expired")
	ErrStateMismatch = errors.New("oauth state does not belong to this session")
)

const stateIssuer = "watch-catalog"

type stateClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// StateSigner emite y valida el parámetro state del flujo OAuth como un JWT
// HS256 de vida corta.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue devuelve el state firmado y su nonce (jti). El nonce se guarda en la
// sesión del navegador que inicia el flujo.
func (s *StateSigner) Issue() (string, string, error) {
	if len(s.secret) == 0 {
		return "", "", ErrStateInvalid
	}
	now := s.now()
	nonce := uuid.NewString()
	claims := stateClaims{
		Purpose: "oauth_state",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return state, nonce, nil
}

// Verify valida firma, expiración y que el jti coincida con el nonce de la
// sesión actual.
func (s *StateSigner) Verify(state, nonce string) error {
	if len(s.secret) == 0 || strings.TrimSpace(state) == "" {
		return ErrStateInvalid
	}
	var claims stateClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(state, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrStateExpired
		}
		return ErrStateInvalid
	}
	if claims.Purpose != "oauth_state" || claims.ID == "" {
		return ErrStateInvalid
	}
	if nonce == "" || subtle.ConstantTimeCompare([]byte(claims.ID), []byte(nonce)) != 1 {
		return ErrStateMismatch
	}
	return nil
}
