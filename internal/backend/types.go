package backend

import "time"

// Client is a customer account administered from the console.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status,omitempty"`
	Suspended bool      `json:"suspended"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ClientInput is the writable part of a Client.
type ClientInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Credit request statuses as reported by the backend.
const (
	CreditPending  = "PENDING"
	CreditApproved = "APPROVED"
	CreditRejected = "REJECTED"
)

// CreditRequest is a client's request for credit.
type CreditRequest struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"clientId"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency,omitempty"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"` // backend dedupe key, forwarded verbatim
	CreatedAt      time.Time `json:"createdAt"`
	DecidedAt      time.Time `json:"decidedAt,omitempty"`
}

// CreditFilter narrows a credit listing.
type CreditFilter struct {
	Status   string
	ClientID string
}

// AuditLog is one backend audit record.
type AuditLog struct {
	ID         string            `json:"id"`
	Actor      string            `json:"actor"`
	Action     string            `json:"action"`
	Resource   string            `json:"resource,omitempty"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// AuditFilter narrows an audit log listing.
type AuditFilter struct {
	Actor  string
	Action string
	From   time.Time
	To     time.Time
}

// Ticket is a support ticket.
type Ticket struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	ClientID    string    `json:"clientId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// TicketInput is the writable part of a Ticket.
type TicketInput struct {
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
}

// Document is a file attached to a client.
type Document struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"clientId"`
	Name       string    `json:"name"`
	Type       string    `json:"type,omitempty"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UserProfile is the signed-in operator's profile.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// User is a console operator account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// UserInput creates an operator account.
type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
