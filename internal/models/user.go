package models

// User is an account of the admin console
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Role   string `json:"role"`
}

// Session is what the console keeps after signing in
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
