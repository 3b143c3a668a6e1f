package ledger_core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const TransferPrefix = "TRF"

// NewReference returns PREFIX-XXXXXXXX with a random uppercase suffix.
func NewReference(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s", prefix, suffix)
}

// DatedReference returns PREFIX-YYYYMMDD for a scheduled occurrence.
func DatedReference(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, date.Format("20060102"))
}
