package user

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender"`
	DOB       string    `json:"dob"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegisterInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Gender         string `json:"gender"`
	DOB            string `json:"dob"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	RetypePassword string `json:"retypePassword"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
