package github

import (
	"github.com/developergarten/garten-auth/social"
)

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func mapProfile(user *githubUser, email string) *social.Profile {
	if user == nil {
		return nil
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &social.Profile{
		UID:       user.ID,
		Email:     email,
		Thumbnail: user.AvatarURL,
		Name:      name,
		Username:  user.Login,
	}
}
