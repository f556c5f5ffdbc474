// ABOUTME: Wire types for the kabar REST API
// ABOUTME: JSON field names follow the backend (judul, isi, kategoriId, isi_motivasi)

package client

import "time"

// RoleAdmin is the elevated role allowed to publish and moderate content
const RoleAdmin = "ADMIN"

// User is the profile returned by the backend
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user holds the ADMIN role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanModify reports whether the user may edit or delete content owned by ownerID
func (u *User) CanModify(ownerID int) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.ID == ownerID
}

// LoginResponse represents the /auth/login response
type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// RegisterInput represents the /auth/register payload
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Category represents a news category
type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"namaKategori"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryWithNews is returned by /news-category/{id}?withNews=true
type CategoryWithNews struct {
	Category
	News []NewsItem `json:"news"`
}

// NewsItem represents a published article
type NewsItem struct {
	ID         int       `json:"id"`
	Title      string    `json:"judul"`
	Body       string    `json:"isi"`
	Image      string    `json:"image"`
	CategoryID int       `json:"kategoriId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UserID     int       `json:"userId"`
	User       *User     `json:"user,omitempty"`
	Category   *Category `json:"kategori,omitempty"`
}

// AuthorName returns the author's display name or a placeholder
func (n NewsItem) AuthorName() string {
	if n.User != nil && n.User.Name != "" {
		return n.User.Name
	}
	return "Unknown author"
}

// CategoryName returns the category name or a placeholder
func (n NewsItem) CategoryName() string {
	if n.Category != nil && n.Category.Name != "" {
		return n.Category.Name
	}
	return "Uncategorized"
}

// NewsInput is the create/update payload for news.
// Zero fields are omitted so PATCH only sends what changed.
type NewsInput struct {
	Title      string `json:"judul,omitempty"`
	Body       string `json:"isi,omitempty"`
	CategoryID int    `json:"kategoriId,omitempty"`
	Image      string `json:"image,omitempty"`
}

// Motivation represents a short motivational post
type Motivation struct {
	ID        int       `json:"id"`
	Text      string    `json:"isi_motivasi"`
	UserID    int       `json:"userId"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MotivationInput is the create/update payload for motivations
type MotivationInput struct {
	Text   string `json:"isi_motivasi"`
	UserID int    `json:"userId,omitempty"`
}
