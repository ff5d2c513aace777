// Package domain defines the record types persisted by the portal: membership
// applications, gallery upload requests, support tickets, ratings, and the
// activity log. All types serialize to JSON inside the shared key-value
// store, so the field names here are the on-disk wire format and must stay
// stable across releases.
package domain

import "time"

// Review statuses shared by applications and uploads.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ReviewStatuses lists every valid application/upload status.
var ReviewStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// Application is a membership request for the medic unit.
//
// Fields:
//   - ID: time-derived base-36 identifier with a random suffix.
//   - RequestNumber: human-readable reference ("MED-" + last 6 digits of the
//     submission time) shown to the applicant for follow-up.
//   - GameUsername: in-game name; the only required field.
//   - Status: one of ReviewStatuses; always "pending" at submission.
type Application struct {
	ID            string    `json:"id"`
	RequestNumber string    `json:"requestNumber"`
	GameUsername  string    `json:"gameUsername"`
	DiscordID     string    `json:"discordId,omitempty"`
	Experience    string    `json:"experience,omitempty"`
	PlayTime      string    `json:"playTime,omitempty"`
	WhyJoin       string    `json:"whyJoin,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
}

// Upload is a request to add media to the unit gallery. It shares the
// lifecycle shape of Application: submitted as pending, reviewed externally,
// never deleted by the data layer.
type Upload struct {
	ID           string    `json:"id"`
	UploadNumber string    `json:"uploadNumber"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category,omitempty"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
}

// ActivityEntry is one element of the append-only activity log. Entries are
// kept newest-first and capped; the whole log carries a single TTL in the
// store, distinct from the store default.
type ActivityEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
}

// Ticket statuses. Stats reporting initializes a bucket for every value of
// the fixed sets below, so consumers can render complete tables without
// existence checks.
const (
	TicketStatusOpen     = "open"
	TicketStatusInReview = "in-review"
	TicketStatusAnswered = "answered"
	TicketStatusClosed   = "closed"
)

var (
	// TicketCategories is the fixed set of ticket categories.
	TicketCategories = []string{"general", "technical", "membership", "gallery", "other"}
	// TicketPriorities is the fixed set of ticket priorities.
	TicketPriorities = []string{"low", "medium", "high", "urgent"}
	// TicketStatuses is the fixed set of ticket statuses.
	TicketStatuses = []string{TicketStatusOpen, TicketStatusInReview, TicketStatusAnswered, TicketStatusClosed}
)

// TicketMessage is one entry of a ticket's ordered message thread.
// IDs are sequential within the ticket ("msg-1", "msg-2", ...).
type TicketMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticket is a support request. A ticket is created with exactly one seed
// message (its description) and accumulates replies; replies and explicit
// status updates are the only mutations short of deletion.
type Ticket struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Messages    []TicketMessage `json:"messages"`
}

// Rating is a 1..5 star score left by a rater on a target (an application,
// an upload, or any other identifiable object). At most one rating exists
// per (TargetID, Rater) pair; rating the same target again replaces the
// earlier record in place.
type Rating struct {
	ID        string    `json:"id"`
	TargetID  string    `json:"targetId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Rater     string    `json:"rater"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidTicketStatus reports whether s belongs to the fixed ticket status set.
func ValidTicketStatus(s string) bool {
	for _, v := range TicketStatuses {
		if v == s {
			return true
		}
	}
	return false
}
