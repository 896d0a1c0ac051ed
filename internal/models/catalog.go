package models

import (
	"strconv"
	"strings"
)

// Status keys
const (
	StatusNeu          = "neu"
	StatusTriaged      = "triaged"
	StatusWaitingUser  = "waiting_user"
	StatusWaitingAdmin = "waiting_admin"
	StatusWaitingOwner = "waiting_owner"
	StatusInArbeit     = "in_arbeit"
	StatusTesting      = "testing"
	StatusGeloest      = "geloest"
	StatusAbgelehnt    = "abgelehnt"
)

// Priority keys
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Category keys
const (
	CategoryBug      = "bug"
	CategoryUX       = "ux"
	CategoryFeature  = "feature"
	CategoryQuestion = "question"
	CategoryOther    = "other"
)

// DefaultTier is shown for items whose tier is missing or out of range
const DefaultTier = 3

// StatusInfo describes how a status is displayed
type StatusInfo struct {
	Key   string
	Label string
	Color string
	Icon  string
}

// TierInfo describes an approval tier
type TierInfo struct {
	Level       int
	Label       string
	Color       string
	Description string
}

// PriorityInfo describes how a priority is displayed
type PriorityInfo struct {
	Key   string
	Label string
	Color string
	Icon  string
}

// CategoryInfo describes how a category is displayed
type CategoryInfo struct {
	Key   string
	Label string
	Icon  string
}

// Statuses lists every status in workflow order
var Statuses = []StatusInfo{
	{Key: StatusNeu, Label: "Neu", Color: "#6B7280", Icon: "📥"},
	{Key: StatusTriaged, Label: "Triaged", Color: "#3B82F6", Icon: "🔍"},
	{Key: StatusWaitingUser, Label: "Warte auf Auswahl", Color: "#F59E0B", Icon: "👤"},
	{Key: StatusWaitingAdmin, Label: "Warte auf Admin", Color: "#F59E0B", Icon: "⏳"},
	{Key: StatusWaitingOwner, Label: "Warte auf Owner", Color: "#EF4444", Icon: "🔴"},
	{Key: StatusInArbeit, Label: "In Arbeit", Color: "#8B5CF6", Icon: "🔧"},
	{Key: StatusTesting, Label: "Testing", Color: "#F97316", Icon: "🧪"},
	{Key: StatusGeloest, Label: "Gelöst", Color: "#10B981", Icon: "✅"},
	{Key: StatusAbgelehnt, Label: "Abgelehnt", Color: "#EF4444", Icon: "❌"},
}

// Tiers lists the approval tiers 1 to 4
var Tiers = []TierInfo{
	{Level: 1, Label: "Automatisch", Color: "#10B981", Description: "Wird automatisch implementiert"},
	{Level: 2, Label: "User-Auswahl", Color: "#F59E0B", Description: "Du wählst die Lösung"},
	{Level: 3, Label: "Admin-Freigabe", Color: "#3B82F6", Description: "Admin muss freigeben"},
	{Level: 4, Label: "Owner-Freigabe", Color: "#EF4444", Description: "Plattform-Owner entscheidet"},
}

// Priorities lists priorities from most to least urgent
var Priorities = []PriorityInfo{
	{Key: PriorityCritical, Label: "Kritisch", Color: "#EF4444", Icon: "🔴"},
	{Key: PriorityHigh, Label: "Hoch", Color: "#F97316", Icon: "🟠"},
	{Key: PriorityMedium, Label: "Mittel", Color: "#F59E0B", Icon: "🟡"},
	{Key: PriorityLow, Label: "Niedrig", Color: "#10B981", Icon: "🟢"},
}

// Categories lists the feedback categories
var Categories = []CategoryInfo{
	{Key: CategoryBug, Label: "Bug", Icon: "🐛"},
	{Key: CategoryUX, Label: "UX", Icon: "🎨"},
	{Key: CategoryFeature, Label: "Feature", Icon: "✨"},
	{Key: CategoryQuestion, Label: "Frage", Icon: "❓"},
	{Key: CategoryOther, Label: "Sonstiges", Icon: "📝"},
}

// LookupStatus returns the display info for key, falling back to "neu"
func LookupStatus(key string) StatusInfo {
	for _, s := range Statuses {
		if s.Key == key {
			return s
		}
	}
	return Statuses[0]
}

// LookupTier returns the tier info for level, falling back to tier 3
func LookupTier(level int) TierInfo {
	for _, t := range Tiers {
		if t.Level == level {
			return t
		}
	}
	return Tiers[DefaultTier-1]
}

// LookupPriority returns the display info for key, falling back to "medium"
func LookupPriority(key string) PriorityInfo {
	for _, p := range Priorities {
		if p.Key == key {
			return p
		}
	}
	return Priorities[2]
}

// LookupCategory returns the display info for key, falling back to "other"
func LookupCategory(key string) CategoryInfo {
	for _, c := range Categories {
		if c.Key == key {
			return c
		}
	}
	return Categories[len(Categories)-1]
}

// IsWaiting reports whether status is one of the waiting_* states
func IsWaiting(status string) bool {
	return strings.HasPrefix(status, "waiting")
}

// IsTerminal reports whether status ends the workflow
func IsTerminal(status string) bool {
	return status == StatusGeloest || status == StatusAbgelehnt
}

// IsKnownStatus reports whether key is part of the status catalog
func IsKnownStatus(key string) bool {
	for _, s := range Statuses {
		if s.Key == key {
			return true
		}
	}
	return false
}

// IsKnownPriority reports whether key is part of the priority catalog
func IsKnownPriority(key string) bool {
	for _, p := range Priorities {
		if p.Key == key {
			return true
		}
	}
	return false
}

// ParseTier parses a tier filter value such as "2"; ok is false for anything outside 1-4
func ParseTier(value string) (level int, ok bool) {
	level, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || level < 1 || level > len(Tiers) {
		return 0, false
	}
	return level, true
}
