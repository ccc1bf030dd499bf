package models

// User is the chat-platform identity issuing a command.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// DisplayName prefers the platform handle.
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.Name
}

// Standing is one line of a ranking.
type Standing struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	OwnerName string `json:"owner_name"`
	Score     int    `json:"score"`
	Position  int    `json:"position"`
}
