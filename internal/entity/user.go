package entity

import "time"

// User is a row of the /users resource. Password holds the bcrypt digest as
// stored; it is never exposed through the GraphQL schema.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// Public returns a copy of u without the password digest.
func (u User) Public() User {
	u.Password = ""
	return u
}

// UserBook is a row of the /userBooks link table backing a user's library.
type UserBook struct {
	ID        int       `json:"id,omitempty"`
	UserID    int       `json:"userId"`
	BookID    int       `json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
	Book      *Book     `json:"book,omitempty"`
}
