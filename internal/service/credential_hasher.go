package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// saltBytes es la entropía de cada salt (passwords y tokens de sesión).
const saltBytes = 128

// CredentialHasher calcula digests HMAC-SHA256 deterministas mezclando una
// clave de aplicación fija con el salt de cada llamada.
type CredentialHasher struct {
	appSecret []byte
}

func NewCredentialHasher(appSecret string) *CredentialHasher {
	return &CredentialHasher{appSecret: []byte(appSecret)}
}

// Hash devuelve hex(HMAC-SHA256(key = salt + "/" + secret, msg = appSecret)).
func (h *CredentialHasher) Hash(salt, secret string) string {
	mac := hmac.New(sha256.New, []byte(salt+"/"+secret))
	mac.Write(h.appSecret)
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches recalcula el digest y lo compara en tiempo constante.
func (h *CredentialHasher) Matches(salt, secret, digest string) bool {
	expected := h.Hash(salt, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) == 1
}

// NewSalt genera 128 bytes aleatorios codificados en base64.
func NewSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
