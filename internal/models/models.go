package models

import "time"

type RSVPStatus string

const (
	RSVPStatusConfirmed RSVPStatus = "confirmed"
	RSVPStatusDeclined  RSVPStatus = "declined"
	RSVPStatusMaybe     RSVPStatus = "maybe"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusConfirmed, RSVPStatusDeclined, RSVPStatusMaybe:
		return true
	}
	return false
}

// Event is the top-level shareable plan. Slug is the public lookup key;
// AdminKey is the write capability carried in the share URL.
type Event struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AdminKey    string    `json:"-"`
	Adults      *int      `json:"adults,omitempty"`
	Children    *int      `json:"children,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Meal is one calendar occasion within an event ("24/12 Dinner").
// Adults/Children seed default headcounts for services created under it;
// later meal edits never cascade to existing services.
type Meal struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Title     string    `json:"title,omitempty"`
	Adults    int       `json:"adults"`
	Children  int       `json:"children"`
	Time      *string   `json:"time,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Services []Service `json:"services,omitempty"`
}

// Service is a course or segment within a meal ("Apéritif", "Dessert").
type Service struct {
	ID          string    `json:"id"`
	MealID      string    `json:"meal_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OrderIndex  int       `json:"order_index"`
	Adults      int       `json:"adults"`
	Children    int       `json:"children"`
	PeopleCount int       `json:"people_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []Item `json:"items,omitempty"`
}

// Item is a dish or product within a service. A nil PersonID means
// unassigned. Category is set by the shopping categorizer when it has run.
type Item struct {
	ID         string    `json:"id"`
	ServiceID  string    `json:"service_id"`
	Name       string    `json:"name"`
	Quantity   *string   `json:"quantity,omitempty"`
	Note       string    `json:"note,omitempty"`
	PersonID   *string   `json:"person_id,omitempty"`
	OrderIndex int       `json:"order_index"`
	Price      *float64  `json:"price,omitempty"`
	Checked    bool      `json:"checked"`
	Category   *string   `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Ingredients []Ingredient `json:"ingredients,omitempty"`
}

type Ingredient struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	Name       string    `json:"name"`
	Quantity   *string   `json:"quantity,omitempty"`
	Checked    bool      `json:"checked"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Person is an event participant. UserID links a claimed person to an
// authenticated identity; a nil Status means no RSVP response yet.
type Person struct {
	ID            string      `json:"id"`
	EventID       string      `json:"event_id"`
	Name          string      `json:"name"`
	Emoji         *string     `json:"emoji,omitempty"`
	Image         *string     `json:"image,omitempty"`
	UserID        *string     `json:"user_id,omitempty"`
	Status        *RSVPStatus `json:"status,omitempty"`
	GuestAdults   int         `json:"guest_adults"`
	GuestChildren int         `json:"guest_children"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Confirmed reports whether the person counts toward headcounts.
func (p Person) Confirmed() bool {
	return p.Status != nil && *p.Status == RSVPStatusConfirmed
}

// EffectiveAdults is 1 + guests for a confirmed person, 0 otherwise.
func (p Person) EffectiveAdults() int {
	if !p.Confirmed() {
		return 0
	}
	return 1 + p.GuestAdults
}

// Plan is the full tree for one event, fetched in one shot and held as the
// single source of truth by the plan store.
type Plan struct {
	Event  Event    `json:"event"`
	Meals  []Meal   `json:"meals"`
	People []Person `json:"people"`
}

// GuestToken is the hashed per-person anonymous write capability.
type GuestToken struct {
	ID        string
	PersonID  string
	TokenHash string
	CreatedAt time.Time
}

// ChangeLog is one audit row written for every mutating action.
type ChangeLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	TableName string    `json:"table_name"`
	RecordID  string    `json:"record_id"`
	OldData   *string   `json:"old_data,omitempty"`
	NewData   *string   `json:"new_data,omitempty"`
	UserIP    string    `json:"user_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingCategories are the store aisles the categorizer may assign,
// in display order. CategoryList is the same set as one comma-joined
// string for prompt building.
var ShoppingCategories = []string{
	"Fruits et Légumes",
	"Boucherie",
	"Poissonnerie",
	"Crèmerie",
	"Épicerie",
	"Boulangerie",
	"Boissons",
	"Surgelés",
	"Autre",
}

const CategoryList = "Fruits et Légumes, Boucherie, Poissonnerie, Crèmerie, Épicerie, Boulangerie, Boissons, Surgelés, Autre"

// ValidCategory reports whether name is a known shopping category.
func ValidCategory(name string) bool {
	for _, category := range ShoppingCategories {
		if category == name {
			return true
		}
	}
	return false
}

type AIFeedback struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	ItemName  string    `json:"item_name"`
	Feedback  string    `json:"feedback"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
