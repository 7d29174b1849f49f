package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewCode genera un código legible {PREFIJO}-{AAAAMMDD}-{4 hex}.
func NewCode(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}
