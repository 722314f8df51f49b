package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params décrit un hash Argon2id. Les paramètres sont stockés dans le
// hash encodé, un compte créé avec d'anciens réglages reste vérifiable.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2 sert aux nouveaux hashs (~15-20ms).
var DefaultArgon2 = Argon2Params{Time: 1, Memory: 32 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

var ErrInvalidHash = errors.New("hash de mot de passe invalide")

const argon2Prefix = "$argon2id$"

// HashPassword hash un mot de passe avec DefaultArgon2.
func HashPassword(password string) (string, error) {
	return DefaultArgon2.Hash(password)
}

// Hash renvoie $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<key>.
func (p Argon2Params) Hash(password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

type decodedHash struct {
	params    Argon2Params
	salt, key []byte
}

func decodeHash(encoded string) (*decodedHash, error) {
	if !IsArgon2Hash(encoded) {
		return nil, ErrInvalidHash
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("version argon2 non supportée: %d", version)
	}

	d := &decodedHash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.params.Memory, &d.params.Time, &d.params.Threads); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	d.params.SaltLen = uint32(len(d.salt))
	d.params.KeyLen = uint32(len(d.key))
	return d, nil
}

// VerifyPassword compare le mot de passe au hash encodé avec les paramètres
// qu'il contient.
func VerifyPassword(password, encodedHash string) (bool, error) {
	d, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}
	other := argon2.IDKey([]byte(password), d.salt, d.params.Time, d.params.Memory, d.params.Threads, d.params.KeyLen)
	return subtle.ConstantTimeCompare(d.key, other) == 1, nil
}

// NeedsRehash indique si le hash a été produit avec d'autres paramètres que
// DefaultArgon2. Un hash illisible doit aussi être refait.
func NeedsRehash(encodedHash string) bool {
	d, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return d.params != DefaultArgon2
}

func IsArgon2Hash(hash string) bool {
	return strings.HasPrefix(hash, argon2Prefix)
}

const passwordSpecials = "@$!%*?&"

// ErrWeakPassword est renvoyée par ValidatePasswordStrength.
var ErrWeakPassword = errors.New("le mot de passe doit contenir au moins 8 caractères, une majuscule, une minuscule, un chiffre et un caractère spécial (@$!%*?&)")

// ValidatePasswordStrength impose au moins 8 caractères parmi [A-Za-z0-9@$!%*?&]
// avec au moins une minuscule, une majuscule, un chiffre et un caractère spécial.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return ErrWeakPassword
		}
	}
	if !lower || !upper || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}
