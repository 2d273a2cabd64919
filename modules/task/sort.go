package task

import (
	"sort"
	"strings"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// Columns accepted by Store.List. Anything else falls back to the default.
const (
	OrderByTitle       = "title"
	OrderByDescription = "description"
	OrderByDueDate     = "due_date"
	OrderByPriority    = "priority"
	OrderByStatus      = "status"

	defaultOrderBy = OrderByDueDate
)

var listOrderColumns = map[string]bool{
	OrderByTitle:       true,
	OrderByDescription: true,
	OrderByDueDate:     true,
	OrderByPriority:    true,
	OrderByStatus:      true,
}

// normalizeListOrder applies the allow-list and default: unrecognized columns
// become due_date, and any direction other than "desc" means ascending.
func normalizeListOrder(orderBy, direction string) (column string, ascending bool) {
	column = strings.ToLower(strings.TrimSpace(orderBy))
	if !listOrderColumns[column] {
		column = defaultOrderBy
	}
	ascending = strings.ToLower(strings.TrimSpace(direction)) != "desc"
	return column, ascending
}

// compareTasks orders a and b on one column: negative when a sorts first.
// Text columns compare case-insensitively, priority by its numeric rank.
func compareTasks(a, b *domain.Task, column string) int {
	switch column {
	case OrderByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case OrderByDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case OrderByPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case OrderByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.DueDate.Compare(b.DueDate)
	}
}

// orderTasks sorts in place with the Store.List contract: the requested
// column first, ties broken by ascending id so every backend returns the
// same sequence.
func orderTasks(tasks []*domain.Task, column string, ascending bool) {
	sort.Slice(tasks, func(i, j int) bool {
		c := compareTasks(tasks[i], tasks[j], column)
		if c == 0 {
			return tasks[i].ID < tasks[j].ID
		}
		if ascending {
			return c < 0
		}
		return c > 0
	})
}
