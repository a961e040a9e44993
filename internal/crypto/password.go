package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// MinPasswordLength is the shortest password RandomPassword will produce.
const MinPasswordLength = 12

// Character classes drawn from by RandomPassword. Ambiguous glyphs such as
// O/0 and l/1 are left out so operators can read the value off a terminal.
var passwordClasses = []string{
	"ABCDEFGHJKLMNPQRSTUVWXYZ",
	"abcdefghijkmnopqrstuvwxyz",
	"23456789",
	"!@#$%^&*-_=+?",
}

var ErrPasswordTooShort = errors.New("password length must be at least 12")

// RandomPassword returns a password of the given length containing at least
// one character of every class.
func RandomPassword(length int) (string, error) {
	if length < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if length > maxPasswordBytes {
		length = maxPasswordBytes
	}

	var pool string
	out := make([]byte, length)
	for i, class := range passwordClasses {
		pool += class
		ch, err := randomByte(class)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}

	for i := len(passwordClasses); i < length; i++ {
		ch, err := randomByte(pool)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}

	// Fisher-Yates so the guaranteed characters do not sit at the front.
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}

	return string(out), nil
}

func randomByte(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
