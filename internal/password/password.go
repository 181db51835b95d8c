package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Compare when the plaintext does not
// match the stored hash.
var ErrMismatch = errors.New("password does not match")

// Hash generates a salted bcrypt hash of the given plaintext.
// bcrypt salts every call, so equal passwords produce distinct hashes.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare validates the plaintext against a stored bcrypt hash.
// The underlying comparison is constant-time.
func Compare(hashed, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}
