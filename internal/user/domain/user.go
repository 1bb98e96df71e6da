package domain

import "time"

type ID string

type User struct {
	ID           ID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the user as exposed to callers: no credential material.
type Profile struct {
	ID        ID
	Name      string
	Email     string
	CreatedAt time.Time
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
