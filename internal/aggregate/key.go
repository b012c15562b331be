package aggregate

import (
	"fmt"
	"time"

	"github.com/cleared-dev/receivables/internal/model"
	"github.com/cleared-dev/receivables/internal/period"
)

// Key identifies a group. Year is zero for groupings that ignore time.
type Key struct {
	Client string
	Year   int
}

// String renders the key as "client" or "client|yyyy".
func (k Key) String() string {
	if k.Year == 0 {
		return k.Client
	}
	return fmt.Sprintf("%s|%04d", k.Client, k.Year)
}

// KeyFunc maps a record to its group.
type KeyFunc func(rec model.Financial, loc *time.Location) Key

// ByClient groups by client identity, falling back to the inline name and
// then to the "-" sentinel.
func ByClient(rec model.Financial, _ *time.Location) Key {
	return Key{Client: rec.Client.Key()}
}

// ByClientYear groups by client and calendar year of the record date.
// Undated records are grouped under the client alone.
func ByClientYear(rec model.Financial, loc *time.Location) Key {
	k := Key{Client: rec.Client.Key()}
	if rec.Date != nil {
		k.Year = period.Year(*rec.Date, loc)
	}
	return k
}
