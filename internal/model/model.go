// Package model defines the CRM domain entities shared by the store,
// the import pipeline, and the CLI/HTTP surfaces.
package model

import "time"

// Role controls row-level visibility: admins see every record in their
// agency, agents and team members only records assigned to them.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAgent      Role = "agent"
	RoleTeamMember Role = "team_member"
)

// Plan is the agency subscription tier.
type Plan string

const (
	PlanBasic      Plan = "Basic"
	PlanPro        Plan = "Pro"
	PlanEnterprise Plan = "Enterprise"
)

// Agency is a tenant. Every other entity carries its AgencyID.
type Agency struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      Plan      `json:"plan"`
	AICredits int       `json:"ai_credits"`
	AILimits  int       `json:"ai_limits"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an agency member.
type User struct {
	ID       string `json:"id"`
	AgencyID string `json:"agency_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Status   string `json:"status"`
	AIUsage  int    `json:"ai_usage"`
}

// Contact is a client or lead tracked by an agency.
type Contact struct {
	ID         string            `json:"id"`
	AgencyID   string            `json:"agency_id"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Email      string            `json:"email"`
	Tags       []string          `json:"tags"`
	Notes      string            `json:"notes"`
	AssignedTo string            `json:"assigned_to"`
	CreatedAt  time.Time         `json:"created_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ListingStatus is the four-stage listing pipeline.
type ListingStatus string

const (
	ListingNew           ListingStatus = "New"
	ListingActive        ListingStatus = "Active"
	ListingUnderContract ListingStatus = "Under Contract"
	ListingSold          ListingStatus = "Sold"
)

// ListingStages orders the pipeline for stage-advance operations.
var ListingStages = []ListingStatus{ListingNew, ListingActive, ListingUnderContract, ListingSold}

// ValidListingStatus reports whether s is one of the four pipeline stages.
func ValidListingStatus(s ListingStatus) bool {
	for _, stage := range ListingStages {
		if s == stage {
			return true
		}
	}
	return false
}

// NextListingStage returns the stage after s, or s itself when the
// listing is already Sold.
func NextListingStage(s ListingStatus) ListingStatus {
	for i, stage := range ListingStages {
		if s == stage && i+1 < len(ListingStages) {
			return ListingStages[i+1]
		}
	}
	return s
}

// Listing is a property tracked by an agency.
type Listing struct {
	ID            string            `json:"id"`
	AgencyID      string            `json:"agency_id"`
	Address       string            `json:"address"`
	SellerName    string            `json:"seller_name"`
	Price         float64           `json:"price"`
	AssignedAgent string            `json:"assigned_agent"`
	Status        ListingStatus     `json:"status"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Shell reports whether the listing was synthesized to anchor an offer
// against a property the agency does not otherwise track.
func (l Listing) Shell() bool {
	return l.Metadata["shell"] == "true"
}

// OfferStatus is the five-stage negotiation pipeline.
type OfferStatus string

const (
	OfferDraft    OfferStatus = "Draft"
	OfferSent     OfferStatus = "Offer Sent"
	OfferInTalks  OfferStatus = "In Talks"
	OfferAccepted OfferStatus = "Offer Accepted"
	OfferDeclined OfferStatus = "Offer Declined"
)

// Financing enumerates accepted financing types for an offer.
type Financing string

const (
	FinancingCash         Financing = "Cash"
	FinancingConventional Financing = "Conventional"
	FinancingFHA          Financing = "FHA"
	FinancingVA           Financing = "VA"
)

// Offer is a purchase offer against a Listing. The listing may be a
// shell when the source data describes an external property.
type Offer struct {
	ID               string            `json:"id"`
	AgencyID         string            `json:"agency_id"`
	ListingID        string            `json:"listing_id"`
	BuyerName        string            `json:"buyer_name"`
	Price            float64           `json:"price"`
	DownPayment      float64           `json:"down_payment"`
	EarnestMoney     float64           `json:"earnest_money"`
	Financing        Financing         `json:"financing"`
	InspectionPeriod int               `json:"inspection_period"` // days
	Contingencies    []string          `json:"contingencies"`
	ClosingDate      string            `json:"closing_date"`
	Status           OfferStatus       `json:"status"`
	AssignedTo       string            `json:"assigned_to"`
	CreatedAt        time.Time         `json:"created_at"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// TaskStatus is Pending or Done.
type TaskStatus string

const (
	TaskPending TaskStatus = "Pending"
	TaskDone    TaskStatus = "Done"
)

// TaskPriority orders agency ops work.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// Task is a unit of agency ops work.
type Task struct {
	ID         string            `json:"id"`
	AgencyID   string            `json:"agency_id"`
	Title      string            `json:"title"`
	AssignedTo string            `json:"assigned_to"`
	DueDate    string            `json:"due_date"`
	Status     TaskStatus        `json:"status"`
	Priority   TaskPriority      `json:"priority"`
	CreatedAt  time.Time         `json:"created_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ThreadType scopes a message thread to a record or the whole agency.
type ThreadType string

const (
	ThreadGeneral ThreadType = "general"
	ThreadListing ThreadType = "listing"
	ThreadOffer   ThreadType = "offer"
)

// Thread is a team messaging channel.
type Thread struct {
	ID        string     `json:"id"`
	AgencyID  string     `json:"agency_id"`
	Title     string     `json:"title"`
	Type      ThreadType `json:"type"`
	RelatedID string     `json:"related_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Message is a single post in a Thread.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityType distinguishes plain events from audit and AI entries.
type ActivityType string

const (
	ActivityEvent ActivityType = "event"
	ActivityAudit ActivityType = "audit"
	ActivityAI    ActivityType = "ai"
)

// Activity is an append-only audit log entry.
type Activity struct {
	ID        string       `json:"id"`
	AgencyID  string       `json:"agency_id"`
	UserID    string       `json:"user_id"`
	Action    string       `json:"action"`
	Target    string       `json:"target"`
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
}

// Notification is a per-user alert.
type Notification struct {
	ID        string    `json:"id"`
	AgencyID  string    `json:"agency_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}
