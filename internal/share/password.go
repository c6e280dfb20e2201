package share

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonMemory     = 64 * 1024
	argonIterations = 3
	argonThreads    = 1
	argonSaltLength = 16
	argonKeyLength  = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword returns an argon2id PHC string for a share-link password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonThreads, argonKeyLength)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// VerifyPassword checks password against a stored hash. Links created before
// argon2id carry an unsalted hex SHA-256 digest; those still verify.
func VerifyPassword(stored, password string) (bool, error) {
	if strings.HasPrefix(stored, "$argon2id$") {
		h, err := parseArgon2id(stored)
		if err != nil {
			return false, err
		}
		sum := argon2.IDKey([]byte(password), h.salt, h.t, h.m, h.p, uint32(len(h.sum)))
		return subtle.ConstantTimeCompare(sum, h.sum) == 1, nil
	}

	want, err := hex.DecodeString(stored)
	if err != nil || len(want) != sha256.Size {
		return false, ErrMalformedHash
	}
	got := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(got[:], want) == 1, nil
}

type argon2idHash struct {
	m    uint32
	t    uint32
	p    uint8
	salt []byte
	sum  []byte
}

func parseArgon2id(phc string) (*argon2idHash, error) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrMalformedHash
	}
	if parts[2] != "v=19" {
		return nil, fmt.Errorf("unsupported argon2id version %s: %w", parts[2], ErrMalformedHash)
	}

	h := &argon2idHash{}
	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return nil, ErrMalformedHash
	}
	for _, param := range params {
		k, v, ok := strings.Cut(param, "=")
		if !ok {
			return nil, ErrMalformedHash
		}
		switch k {
		case "m":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return nil, ErrMalformedHash
			}
			h.m = uint32(n)
		case "t":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return nil, ErrMalformedHash
			}
			h.t = uint32(n)
		case "p":
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				return nil, ErrMalformedHash
			}
			h.p = uint8(n)
		default:
			return nil, ErrMalformedHash
		}
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, ErrMalformedHash
	}
	if h.sum, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.sum) == 0 {
		return nil, ErrMalformedHash
	}
	return h, nil
}
