package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewRecordIDUniqueAndSortablePrefix(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewRecordID(now)
		if id == "" {
			t.Fatalf("empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}

	later := NewRecordID(now.Add(time.Hour))
	if strings.Compare(later[:8], NewRecordID(now)[:8]) <= 0 {
		t.Fatalf("time prefix not increasing across an hour")
	}
}

func TestNewReferenceNumber(t *testing.T) {
	now := time.UnixMilli(1_700_000_123_456)

	got := NewReferenceNumber("MED", now)
	if got != "MED-123456" {
		t.Fatalf("reference = %q, want MED-123456", got)
	}
	if got := NewReferenceNumber("UPL", now); got != "UPL-123456" {
		t.Fatalf("reference = %q, want UPL-123456", got)
	}
}

func TestNewTicketID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	id := NewTicketID(now, 0)
	if !strings.HasPrefix(id, "TICKET-") {
		t.Fatalf("id = %q, want TICKET- prefix", id)
	}
	if id != strings.ToUpper(id) {
		t.Fatalf("id = %q, want uppercase", id)
	}
	if NewTicketID(now, 1) == id {
		t.Fatalf("sequence bump did not change the id")
	}
}

func TestValidTicketStatus(t *testing.T) {
	for _, v := range TicketStatuses {
		if !ValidTicketStatus(v) {
			t.Fatalf("status %q rejected", v)
		}
	}
	for _, v := range []string{"", "OPEN", "escalated", "pending"} {
		if ValidTicketStatus(v) {
			t.Fatalf("status %q accepted", v)
		}
	}
}
