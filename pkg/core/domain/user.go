package domain

// User is a registered account. Hash is empty for accounts created
// through an external identity provider; those cannot log in with a password.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Hash     string `json:"hash,omitempty"`
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
