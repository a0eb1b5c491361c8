package auth

import (
	"strings"

	"github.com/dmitrijs2005/bizdesk/internal/common"
)

// BearerToken extracts the token from an Authorization value. Both
// "Bearer <token>" and a bare token are accepted.
func BearerToken(value string) string {
	value = strings.TrimLeft(value, " ")
	if len(value) >= len(common.BearerPrefix) && strings.EqualFold(value[:len(common.BearerPrefix)], common.BearerPrefix) {
		return strings.TrimSpace(value[len(common.BearerPrefix):])
	}
	return strings.TrimSpace(value)
}
