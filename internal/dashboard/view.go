package dashboard

import (
	"strconv"
	"unicode/utf8"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/models"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
)

// Truncation lengths on cards
const (
	cardMessageLength = 150
	cardSummaryLength = 100
)

// FilterKind names one of the four list filters
type FilterKind string

const (
	FilterStatus   FilterKind = "status"
	FilterTier     FilterKind = "tier"
	FilterPriority FilterKind = "priority"
	FilterCategory FilterKind = "category"
)

// FilterKinds lists the filters in display order
var FilterKinds = []FilterKind{FilterStatus, FilterTier, FilterPriority, FilterCategory}

// Filters are the active list predicates. An empty value does not constrain.
type Filters struct {
	Status   string
	Tier     string
	Priority string
	Category string
}

// Get returns the value of one filter
func (f Filters) Get(kind FilterKind) string {
	switch kind {
	case FilterStatus:
		return f.Status
	case FilterTier:
		return f.Tier
	case FilterPriority:
		return f.Priority
	case FilterCategory:
		return f.Category
	}
	return ""
}

// IsEmpty reports whether no filter is set
func (f Filters) IsEmpty() bool {
	return f == Filters{}
}

// Match reports whether item passes every set filter
func (f Filters) Match(item *models.FeedbackItem) bool {
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.Tier != "" && strconv.Itoa(item.Tier) != f.Tier {
		return false
	}
	if f.Priority != "" && item.Priority != f.Priority {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	return true
}

// SetFilter sets one filter; "" clears it. The cache is not refetched.
func (d *Dashboard) SetFilter(kind FilterKind, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch kind {
	case FilterStatus:
		d.filters.Status = value
	case FilterTier:
		d.filters.Tier = value
	case FilterPriority:
		d.filters.Priority = value
	case FilterCategory:
		d.filters.Category = value
	default:
		return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"unknown filter", string(kind))
	}
	return nil
}

// SetFilters replaces all filters at once
func (d *Dashboard) SetFilters(f Filters) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters = f
}

// ClearFilters removes every filter
func (d *Dashboard) ClearFilters() {
	d.SetFilters(Filters{})
}

// Filters returns the active filters
func (d *Dashboard) Filters() Filters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filters
}

// Visible returns the cached items passing the filters, in server order.
// While the last load failed the list shows the error instead, so nothing is visible.
func (d *Dashboard) Visible() []models.FeedbackItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visibleLocked()
}

func (d *Dashboard) visibleLocked() []models.FeedbackItem {
	if d.listError != "" {
		return nil
	}
	out := make([]models.FeedbackItem, 0, len(d.items))
	for i := range d.items {
		if d.filters.Match(&d.items[i]) {
			out = append(out, d.items[i])
		}
	}
	return out
}

// Card is the rendered summary of one list item
type Card struct {
	ID           string
	Tier         int
	TierInfo     models.TierInfo
	Status       models.StatusInfo
	Priority     models.PriorityInfo
	Category     models.CategoryInfo
	Message      string
	Summary      string
	UserEmail    string
	Date         string
	TabContext   string
	ShowApproval bool
}

// NewCard builds the card for item
func NewCard(item *models.FeedbackItem) Card {
	tabContext := item.TabContext
	if tabContext == "" {
		tabContext = "Unbekannt"
	}
	return Card{
		ID:           item.ID,
		Tier:         item.Tier,
		TierInfo:     models.LookupTier(item.Tier),
		Status:       models.LookupStatus(item.Status),
		Priority:     models.LookupPriority(item.Priority),
		Category:     models.LookupCategory(item.Category),
		Message:      Truncate(item.Message, cardMessageLength),
		Summary:      Truncate(item.AISummary, cardSummaryLength),
		UserEmail:    item.UserEmail,
		Date:         contextutils.FormatCardDate(item.CreatedAt.Time),
		TabContext:   tabContext,
		ShowApproval: item.IsWaiting(),
	}
}

// Cards returns one card per visible item
func (d *Dashboard) Cards() []Card {
	visible := d.Visible()
	cards := make([]Card, 0, len(visible))
	for i := range visible {
		cards = append(cards, NewCard(&visible[i]))
	}
	return cards
}

// Truncate shortens s to n characters and appends "..." when it was cut
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
