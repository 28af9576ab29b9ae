package recipe

import (
	"fmt"
	"strings"

	berrors "github.com/boldpkg/bold/internal/errors"
)

// FormatIdentity joins a name and digest into name@digest.
func FormatIdentity(name, digest string) string {
	return name + "@" + digest
}

// ParseIdentity splits name@digest. Both parts must be non-empty.
func ParseIdentity(identity string) (name, digest string, err error) {
	i := strings.LastIndex(identity, "@")
	if i <= 0 || i == len(identity)-1 {
		return "", "", fmt.Errorf("%w: %q is not a name@digest identity", berrors.ErrResolution, identity)
	}
	return identity[:i], identity[i+1:], nil
}

// LooksLikeIdentity reports whether s has the name@digest shape.
func LooksLikeIdentity(s string) bool {
	_, _, err := ParseIdentity(s)
	return err == nil
}
