package entity

import "time"

// Roles a platform account can hold.
const (
	RoleStudio  = "studio"
	RoleCreator = "creator"
	RolePlayer  = "player"
)

type User struct {
	ID          string    `json:"id" firestore:"id"`
	Email       string    `json:"email" firestore:"email"`
	Username    string    `json:"username" firestore:"username"`
	DisplayName string    `json:"display_name,omitempty" firestore:"displayName,omitempty"`
	Bio         string    `json:"bio,omitempty" firestore:"bio,omitempty"`
	Role        string    `json:"role" firestore:"role"`
	AvatarURL   string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PublicProfile is the subset of a user record safe to embed in other
// users' views. No email or other contact details.
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Role        string `json:"role"`
}

func (u *User) PublicProfile() *PublicProfile {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return &PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: name,
		AvatarURL:   u.AvatarURL,
		Role:        u.Role,
	}
}
