package model

import "time"

// Session is a server-side session row. The cookie only carries the
// signed sid; the identity payload lives in the store.
type Session struct {
	SID      string    `db:"sid" json:"sid"`
	Identity Identity  `db:"sess" json:"sess"`
	Expire   time.Time `db:"expire" json:"expire"`
}
