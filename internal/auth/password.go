// password.go wraps bcrypt hashing so the cost parameter and the dummy-compare
// trick live in one place.
package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is a valid bcrypt hash of an unguessable string; compared against
// when the username is unknown so lookups for existing and non-existing
// accounts take comparable time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes a plaintext password with bcrypt at default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// burnPasswordCheck performs a bcrypt comparison against a constant hash.
// Called on unknown usernames to keep the timing of "unknown user" and
// "wrong password" responses indistinguishable.
func burnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
