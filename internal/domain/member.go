package domain

import "time"

// Member es un usuario registrado del catálogo.
type Member struct {
	ID             string          `json:"_id"`
	Membername     string          `json:"membername"`
	Email          string          `json:"email"`
	YOB            int             `json:"YOB"`
	GoogleID       string          `json:"-"`
	IsAdmin        bool            `json:"isAdmin"`
	Authentication *Authentication `json:"authentication,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Authentication agrupa las credenciales locales y el token de sesión vigente.
// Solo se cargan cuando el repositorio las pide explícitamente.
type Authentication struct {
	Password     string `json:"-"`
	Salt         string `json:"-"`
	SessionToken string `json:"sessionToken,omitempty"`
}

// HasLocalCredentials indica si el miembro tiene password y salt guardados.
func (m Member) HasLocalCredentials() bool {
	return m.Authentication != nil && m.Authentication.Salt != "" && m.Authentication.Password != ""
}

// PublicMember es el subconjunto que se envía al front-end tras el login federado.
type PublicMember struct {
	ID         string `json:"_id"`
	Membername string `json:"membername"`
	Email      string `json:"email"`
	YOB        int    `json:"YOB"`
	IsAdmin    bool   `json:"isAdmin"`
}

func (m Member) Public() PublicMember {
	return PublicMember{
		ID:         m.ID,
		Membername: m.Membername,
		Email:      m.Email,
		YOB:        m.YOB,
		IsAdmin:    m.IsAdmin,
	}
}
