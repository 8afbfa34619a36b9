package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"todoTracker/internal/models/task"
)

const MaxCategoryLength = 50

var dateLayouts = []string{
	task.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Body сырое тело запроса; null-значения считаются отсутствующими
type Body map[string]any

func Decode(r io.Reader) (Body, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Body{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	switch v := raw.(type) {
	case map[string]any:
		return Body(v), nil
	case nil:
		return Body{}, nil
	default:
		return nil, ErrInvalidBody
	}
}

func (b Body) lookup(field string) (any, bool) {
	v, ok := b[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

type NewTask struct {
	Text        string
	Description string
	DueDate     *time.Time
	Category    string
	Completed   bool
}

func (s *Sanitizer) ParseCreate(b Body) (NewTask, error) {
	out := NewTask{Category: task.DefaultCategory}

	raw, ok := b.lookup("text")
	if !ok {
		return out, fieldError("text", "обязательное поле")
	}
	text, err := s.text("text", raw)
	if err != nil {
		return out, err
	}
	out.Text = text

	if raw, ok := b.lookup("description"); ok {
		desc, err := stringValue("description", raw)
		if err != nil {
			return out, err
		}
		out.Description = s.TextareaField(desc)
	}

	if raw, ok := b.lookup("due_date"); ok {
		due, err := s.dueDate(raw)
		if err != nil {
			return out, err
		}
		out.DueDate = due
	}

	if raw, ok := b.lookup("category"); ok {
		category, err := s.category(raw)
		if err != nil {
			return out, err
		}
		out.Category = category
	}

	if raw, ok := b.lookup("completed"); ok {
		out.Completed = CoerceBool(raw)
	}

	return out, nil
}

// ParseUpdate собирает патч только из присутствующих полей
func (s *Sanitizer) ParseUpdate(b Body) (task.Patch, error) {
	var options []task.PatchOption

	if raw, ok := b.lookup("text"); ok {
		text, err := s.text("text", raw)
		if err != nil {
			return task.Patch{}, err
		}
		options = append(options, task.WithText(text))
	}

	if raw, ok := b.lookup("description"); ok {
		desc, err := stringValue("description", raw)
		if err != nil {
			return task.Patch{}, err
		}
		options = append(options, task.WithDescription(s.TextareaField(desc)))
	}

	if raw, ok := b.lookup("due_date"); ok {
		due, err := s.dueDate(raw)
		if err != nil {
			return task.Patch{}, err
		}
		options = append(options, task.WithDueDate(due))
	}

	if raw, ok := b.lookup("category"); ok {
		category, err := s.category(raw)
		if err != nil {
			return task.Patch{}, err
		}
		options = append(options, task.WithCategory(category))
	}

	if raw, ok := b.lookup("completed"); ok {
		options = append(options, task.WithCompleted(CoerceBool(raw)))
	}

	patch := task.NewPatch(options...)
	if patch.IsEmpty() {
		return patch, ErrNoData
	}
	return patch, nil
}

func (s *Sanitizer) text(field string, raw any) (string, error) {
	value, err := stringValue(field, raw)
	if err != nil {
		return "", err
	}
	clean := s.TextField(value)
	if clean == "" {
		return "", fieldError(field, "не может быть пустым")
	}
	return clean, nil
}

func (s *Sanitizer) category(raw any) (string, error) {
	value, err := stringValue("category", raw)
	if err != nil {
		return "", err
	}
	clean := s.TextField(value)
	if clean == "" {
		return task.DefaultCategory, nil
	}
	if utf8.RuneCountInString(clean) > MaxCategoryLength {
		return "", fieldError("category", fmt.Sprintf("не длиннее %d символов", MaxCategoryLength))
	}
	return clean, nil
}

// dueDate: пустая строка означает явную очистку и даёт nil без ошибки
func (s *Sanitizer) dueDate(raw any) (*time.Time, error) {
	value, err := stringValue("due_date", raw)
	if err != nil {
		return nil, err
	}
	clean := s.TextField(value)
	if clean == "" {
		return nil, nil
	}
	due, err := ParseDate(clean)
	if err != nil {
		return nil, fieldError("due_date", "ожидается дата в формате YYYY-MM-DD")
	}
	return &due, nil
}

// ParseDate возвращает полночь UTC календарной даты из строки
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("неизвестный формат даты %q", value)
}

func stringValue(field string, raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fieldError(field, "ожидается строка")
	}
}

// CoerceBool приводит значение к bool: "", "0", "false", 0, пустые массивы и объекты дают false
func CoerceBool(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		return s != "" && s != "0" && s != "false"
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
