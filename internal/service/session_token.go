package service

// SessionTokenIssuer deriva tokens de sesión opacos. No persiste nada:
// quien llama guarda el token en el miembro.
type SessionTokenIssuer struct {
	hasher *CredentialHasher
}

func NewSessionTokenIssuer(hasher *CredentialHasher) *SessionTokenIssuer {
	return &SessionTokenIssuer{hasher: hasher}
}

// Issue genera un salt nuevo y devuelve hash(salt, subject).
func (i *SessionTokenIssuer) Issue(subject string) (salt, token string, err error) {
	salt, err = NewSalt()
	if err != nil {
		return "", "", err
	}
	return salt, i.hasher.Hash(salt, subject), nil
}
