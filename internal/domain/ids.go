// Identifier generation for portal records.
//
// Record IDs are intentionally human-scannable rather than UUIDs: a base-36
// millisecond timestamp plus a short random suffix. Collision probability at
// the data sizes involved (hundreds of records, single writer) is negligible,
// and the time prefix keeps IDs roughly sortable by creation order.
package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// NewRecordID returns a base-36 identifier derived from now plus a random
// base-36 suffix.
func NewRecordID(now time.Time) string {
	suffix := strconv.FormatUint(rand.Uint64(), 36)
	return strconv.FormatInt(now.UnixMilli(), 36) + suffix
}

// NewReferenceNumber builds a human-readable reference such as "MED-483920"
// or "UPL-483920" from the last six digits of the unix-millisecond clock.
func NewReferenceNumber(prefix string, now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s-%s", prefix, ms)
}

// NewTicketID returns an uppercase base-36 ticket identifier
// ("TICKET-MABC123"). seq disambiguates tickets created within the same
// millisecond, which matters for bulk creation in a single process.
func NewTicketID(now time.Time, seq int64) string {
	return "TICKET-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli()+seq, 36))
}
