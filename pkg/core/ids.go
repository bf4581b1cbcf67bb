package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultIDPrefix is used by NewID when no prefix is given.
const DefaultIDPrefix = "id"

const idSuffixLen = 9

// NewID generates a dataset identifier of the form <prefix>-<unix millis>-<suffix>,
// where suffix is 9 lowercase alphanumeric characters taken from a random UUID.
func NewID(prefix string) string {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLen]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}
