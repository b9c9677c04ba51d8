package domain

// User is the signed-in customer as seen by this service. Accounts live with
// the identity provider; only what the access token carries is kept here.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// DisplayName falls back to the email, then to a generic label.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Utente"
}
