package task

import "time"

const DefaultCategory = "general"

// DateLayout формат due_date в API и в ключах сортировки
const DateLayout = "2006-01-02"

type Task struct {
	ID          int64      `json:"id" db:"id"`
	OwnerID     *int64     `json:"user_id,omitempty" db:"user_id"`
	Text        string     `json:"text" db:"text"`
	Description string     `json:"description" db:"description"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Category    string     `json:"category" db:"category"`
	Completed   bool       `json:"completed" db:"completed"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// DueDateString возвращает due_date как YYYY-MM-DD, либо "" если даты нет
func (t *Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

func (t *Task) OwnedBy(ownerID int64) bool {
	return t.OwnerID != nil && *t.OwnerID == ownerID
}

func (t *Task) Clone() *Task {
	c := *t
	if t.OwnerID != nil {
		owner := *t.OwnerID
		c.OwnerID = &owner
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}
