// Package ordering implements the urgency ordering used for every task list.
//
// Tasks are bucketed into five ranks (overdue, due today, upcoming, undated,
// completed). Inside a rank tasks go by due date ascending and then by
// creation time, newest first. Ties left after that are broken by id,
// highest first, so the order never depends on storage iteration order.
package ordering

import (
	"sort"
	"time"

	"todoTracker/internal/models/task"
)

type Rank int

const (
	RankOverdue Rank = iota + 1
	RankDueToday
	RankUpcoming
	RankUndated
	RankCompleted
)

func (r Rank) String() string {
	switch r {
	case RankOverdue:
		return "overdue"
	case RankDueToday:
		return "due_today"
	case RankUpcoming:
		return "upcoming"
	case RankUndated:
		return "undated"
	case RankCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// RankOf считает ранг задачи; today в формате task.DateLayout
func RankOf(t *task.Task, today string) Rank {
	if t.Completed {
		return RankCompleted
	}
	due := t.DueDateString()
	switch {
	case due == "":
		return RankUndated
	case due < today:
		return RankOverdue
	case due == today:
		return RankDueToday
	default:
		return RankUpcoming
	}
}

func Less(a, b *task.Task, today string) bool {
	ra, rb := RankOf(a, today), RankOf(b, today)
	if ra != rb {
		return ra < rb
	}

	da, db := a.DueDateString(), b.DueDateString()
	if da != db {
		// внутри ранга без даты быть не может, кроме completed: там NULL идёт последним
		if da == "" {
			return false
		}
		if db == "" {
			return true
		}
		return da < db
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

type Policy struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location, now func() time.Time) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Policy{loc: loc, now: now}
}

// Today текущая дата в часовом поясе политики
func (p *Policy) Today() string {
	return p.now().In(p.loc).Format(task.DateLayout)
}

func (p *Policy) Rank(t *task.Task) Rank {
	return RankOf(t, p.Today())
}

// Sort сортирует срез на месте
func (p *Policy) Sort(tasks []*task.Task) {
	today := p.Today()
	sort.SliceStable(tasks, func(i, j int) bool {
		return Less(tasks[i], tasks[j], today)
	})
}
