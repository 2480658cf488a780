package domain

import "time"

type Brand struct {
	ID        string    `json:"_id"`
	BrandName string    `json:"brandName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Watch struct {
	ID               string    `json:"_id"`
	WatchName        string    `json:"watchName"`
	Image            string    `json:"image"`
	Price            float64   `json:"price"`
	Automatic        bool      `json:"automatic"`
	WatchDescription string    `json:"watchDescription"`
	BrandID          string    `json:"-"`
	Brand            *Brand    `json:"brand,omitempty"`
	Comments         []Comment `json:"comments"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Comment es la reseña de un miembro sobre un reloj (una por miembro y reloj).
type Comment struct {
	ID        string        `json:"_id"`
	WatchID   string        `json:"-"`
	Rating    int           `json:"rating"`
	Content   string        `json:"content"`
	AuthorID  string        `json:"-"`
	Author    CommentAuthor `json:"author"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type CommentAuthor struct {
	ID         string `json:"_id"`
	Membername string `json:"membername"`
	Email      string `json:"email"`
}

const (
	MinRating = 1
	MaxRating = 3
)
