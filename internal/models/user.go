package models

import "strings"

// User is an operator account allowed to call the control API. Usernames
// are stored in their normalized form.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// NormalizeUsername trims surrounding space and lowercases, so "Grower" and
// " grower" name the same operator.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
