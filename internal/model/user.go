package model

// User represents an account row in the `users` table.  The id is the
// username chosen at registration and never changes afterwards, even when
// the username itself is renamed.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	PasswordHash – bcrypt hashed password.
//	Email        – address used for email notifications.
//	PushToken    – Expo push token (optional).
//	IsAdmin      – administrator flag.
//	IsDriver     – driver flag.
type User struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Email        string  `json:"email"`
	PushToken    *string `json:"push_token"`
	IsAdmin      bool    `json:"is_admin"`
	IsDriver     bool    `json:"is_driver"`
}

// UserPatch lists the profile fields a partial update may change.  Nil
// fields are left untouched.  PasswordHash holds the new bcrypt hash, never the
// raw password.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Email        *string
	PushToken    *string
	IsAdmin      *bool
	IsDriver     *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.Email == nil &&
		p.PushToken == nil && p.IsAdmin == nil && p.IsDriver == nil
}
