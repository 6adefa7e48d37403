package utils

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Credential is the single admin login. Exactly one of Password or
// PasswordHash (bcrypt) is expected to be set.
type Credential struct {
	Username     string
	Password     string
	PasswordHash string
}

var ErrBadCredential = errors.New("invalid credential")

// Verify compares user/password against c without short-circuiting on the
// username, so both comparisons always run.
func (c Credential) Verify(user, password string) error {
	if c.Username == "" || (c.Password == "" && c.PasswordHash == "") {
		return ErrBadCredential
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.Username)) == 1

	var passOK bool
	if c.PasswordHash != "" {
		passOK = CheckPassword(c.PasswordHash, password) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	}

	if !userOK || !passOK {
		return ErrBadCredential
	}
	return nil
}
