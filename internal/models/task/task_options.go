package task

import "time"

// Patch частичное обновление: nil-поля не трогаются
type Patch struct {
	Text        *string
	Description *string
	// DueDateSet=true и DueDate=nil очищает дату
	DueDateSet bool
	DueDate    *time.Time
	Category   *string
	Completed  *bool
}

type PatchOption func(*Patch)

func NewPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func WithText(text string) PatchOption {
	return func(p *Patch) {
		p.Text = &text
	}
}

func WithDescription(description string) PatchOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

// WithDueDate(nil) очищает дату
func WithDueDate(due *time.Time) PatchOption {
	return func(p *Patch) {
		p.DueDateSet = true
		p.DueDate = due
	}
}

func WithCategory(category string) PatchOption {
	if category == "" {
		category = DefaultCategory
	}
	return func(p *Patch) {
		p.Category = &category
	}
}

func WithCompleted(completed bool) PatchOption {
	return func(p *Patch) {
		p.Completed = &completed
	}
}

func (p Patch) IsEmpty() bool {
	return p.Text == nil &&
		p.Description == nil &&
		!p.DueDateSet &&
		p.Category == nil &&
		p.Completed == nil
}

// Fields имена колонок, которые затрагивает патч, в порядке колонок таблицы
func (p Patch) Fields() []string {
	fields := []string{}
	if p.Text != nil {
		fields = append(fields, "text")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.DueDateSet {
		fields = append(fields, "due_date")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Completed != nil {
		fields = append(fields, "completed")
	}
	return fields
}

// Apply не трогает id, владельца и created_at
func (p Patch) Apply(t *Task) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDateSet {
		if p.DueDate == nil {
			t.DueDate = nil
		} else {
			due := *p.DueDate
			t.DueDate = &due
		}
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
