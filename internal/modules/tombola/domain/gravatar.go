package domain

import (
	"crypto/md5"
	"fmt"
	"strings"
)

const GravatarDefaultSize = 200

// GravatarURL derives the avatar URL for an email address. The hash input is
// the trimmed, lowercased address, so the URL is stable across joins.
func GravatarURL(email string, size int) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=identicon", hash, size)
}
