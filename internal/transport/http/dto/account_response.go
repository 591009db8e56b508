package dto

import (
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/session"
)

type UserView struct {
	ID          string `json:"id"`
	UserName    string `json:"user_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Locale      string `json:"locale"`
	Title       string `json:"title"`
	Active      bool   `json:"active"`
}

// SessionView never exposes the session id; that travels in the cookie.
type SessionView struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
}

type AccountData struct {
	Session SessionView `json:"session"`
	User    *UserView   `json:"user,omitempty"`
}

type CSRFData struct {
	Token string `json:"csrf_token"`
}

type CaptchaData struct {
	Image string `json:"image"`
}

func NewSessionView(st session.State) SessionView {
	return SessionView{Authenticated: !st.IsGuest(), UserID: st.UserID}
}

// NewAccountData omits the user when u is the zero value.
func NewAccountData(st session.State, u domain.User) AccountData {
	d := AccountData{Session: NewSessionView(st)}
	if u.ID != "" {
		d.User = &UserView{
			ID:          u.ID,
			UserName:    u.UserName,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			Locale:      u.Locale,
			Title:       u.Title,
			Active:      u.Active,
		}
	}
	return d
}
