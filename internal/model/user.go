package model

import "encoding/json"

type User struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// UnmarshalJSON accepts the document-store "_id" spelling as well as "id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// DisplayName falls back to the email when the service sent no name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session is the authenticated identity held by the client. It is either
// absent or carries both a token and a user.
type Session struct {
	Token string `json:"accessToken"`
	User  User   `json:"user"`
}

// Complete reports whether both the token and the user id are present.
func (s Session) Complete() bool {
	return s.Token != "" && s.User.ID != ""
}
