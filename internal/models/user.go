package models

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"` // hash argon2id
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}
