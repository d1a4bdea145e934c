package syncer

import (
	"fmt"
	"strings"
)

// Step task identifiers.
const (
	TaskProfile      = "profile"
	TaskTransactions = "transactions"
	TaskLost         = "task:lost"
	TaskPending      = "task:pending"
	TaskActive       = "task:active"
	TaskPreferred    = "task:preferred"
	TaskInProgress   = "task:in-progress"
	TaskFavourites   = "task:favourites"
	TaskPromoted     = "task:promoted"
	TaskHidden       = "task:hidden"
	TaskArchived     = "task:archived"
)

const taskPrefix = "task:"

// Step is one entry of the sync queue.
type Step struct {
	Task  string `json:"task"`
	Label string `json:"label"`
	Page  int    `json:"page"`
	Paged bool   `json:"paged"`
}

// String renders the step for logs and progress output.
func (s Step) String() string {
	if s.Page > 1 {
		return fmt.Sprintf("%s (page %d)", s.Label, s.Page)
	}
	return s.Label
}

// BuildQueue returns the ordered sync steps. The lost transition must follow
// the profile and precede every filtered task fetch: it demotes all open
// tasks so that only those confirmed by a later fetch are restored.
func BuildQueue() []Step {
	return []Step{
		{Task: TaskProfile, Label: "User profile", Page: 0, Paged: false},
		{Task: TaskTransactions, Label: "Transactions", Page: 1, Paged: true},
		{Task: TaskLost, Label: "Tasks (lost)", Page: 0, Paged: false},
		{Task: TaskPending, Label: "Tasks (pending)", Page: 1, Paged: true},
		{Task: TaskActive, Label: "Tasks (active)", Page: 1, Paged: true},
		{Task: TaskPreferred, Label: "Tasks (preferred)", Page: 1, Paged: true},
		{Task: TaskInProgress, Label: "Tasks (in progress)", Page: 1, Paged: true},
		{Task: TaskFavourites, Label: "Tasks (favourites)", Page: 1, Paged: true},
		{Task: TaskPromoted, Label: "Tasks (promoted)", Page: 1, Paged: false},
		{Task: TaskHidden, Label: "Tasks (hidden)", Page: 1, Paged: true},
		{Task: TaskArchived, Label: "Tasks (archived)", Page: 1, Paged: true},
	}
}

// taskFilter maps a task step to the API filter name.
func taskFilter(task string) (string, bool) {
	if !strings.HasPrefix(task, taskPrefix) || task == TaskLost {
		return "", false
	}
	filter := strings.TrimPrefix(task, taskPrefix)
	switch filter {
	case "pending", "active", "preferred", "in-progress", "favourites", "promoted", "archived":
		return filter, true
	case "hidden":
		return "hidden_tasks", true
	default:
		return "", false
	}
}
