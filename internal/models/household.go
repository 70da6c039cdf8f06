package models

import "time"

// HomeType selects the template catalogue during onboarding. Houses get
// exterior and yard templates on top of the shared set.
type HomeType string

const (
	HomeTypeCondo HomeType = "CONDO"
	HomeTypeHouse HomeType = "HOUSE"
)

// Valid reports whether h is a known home type.
func (h HomeType) Valid() bool {
	return h == HomeTypeCondo || h == HomeTypeHouse
}

// Household is the onboarding profile. The service keeps exactly one.
type Household struct {
	ID          string    `json:"id"`
	HomeType    HomeType  `json:"home_type"`
	Location    string    `json:"location"`
	YearBuilt   int       `json:"year_built,omitempty"`
	OnboardedAt time.Time `json:"onboarded_at"`
}

// Asset is a tracked appliance or system. Registering one schedules its
// care tasks; removing it removes its open tasks.
type Asset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ProjectStatus tracks an improvement project from idea to done.
type ProjectStatus string

const (
	ProjectStatusIdea       ProjectStatus = "IDEA"
	ProjectStatusPlanned    ProjectStatus = "PLANNED"
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusIdea, ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is a one-off home improvement, kept apart from recurring
// maintenance so it never feeds the health score.
type Project struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Status        ProjectStatus `json:"status"`
	EstimatedCost *float64      `json:"estimated_cost,omitempty"`
}

// ProjectIdea is an unsaved brainstorm suggestion. The user promotes one
// into a Project by creating it explicitly.
type ProjectIdea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
