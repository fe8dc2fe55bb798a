package users

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Well-known record fields
const (
	FieldID       = "id"
	FieldSub      = "sub"
	FieldEmail    = "email"
	FieldPassword = "password"

	// FieldCollection and FieldStrategy annotate a resolved identity with the
	// collection it came from and the strategy that produced it.
	FieldCollection = "collection"
	FieldStrategy   = "_strategy"
)

// Record is a host-owned user document.
type Record map[string]any

// ID returns the record's id as a string, or "" if unset.
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns field key formatted as a string, or "" if unset.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone is a shallow copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

const (
	passwordLength   = 32
	passwordWishlist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz~!@-#$"
)

// GeneratePassword returns a random password drawn from crypto/rand. Users
// created from provider claims never log in with it, but host collections
// may insist that one exists.
func GeneratePassword() (string, error) {
	buf := make([]byte, 4*passwordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	out := make([]byte, passwordLength)
	for i := range out {
		n := binary.BigEndian.Uint32(buf[4*i:])
		out[i] = passwordWishlist[n%uint32(len(passwordWishlist))]
	}
	return string(out), nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
