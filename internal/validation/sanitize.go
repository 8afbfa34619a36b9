package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses ограничивает снятие вложенного экранирования (&amp;lt; и т.п.)
const maxSanitizePasses = 8

// stripMarkup чистит разметку до неподвижной точки: разэкранированный текст
// снова проходит через политику, чтобы &lt;script&gt; не превратился в живой тег
func (s *Sanitizer) stripMarkup(raw string) string {
	clean := strings.ToValidUTF8(raw, "")
	for i := 0; i < maxSanitizePasses; i++ {
		// StrictPolicy экранирует &, <, кавычки; в JSON нам нужен исходный текст
		next := html.UnescapeString(s.policy.Sanitize(clean))
		if next == clean {
			return clean
		}
		clean = next
	}
	return s.policy.Sanitize(clean)
}

// TextField однострочное поле: без разметки, все пробельные символы схлопнуты в один пробел
func (s *Sanitizer) TextField(raw string) string {
	return strings.Join(strings.Fields(s.stripMarkup(raw)), " ")
}

// TextareaField многострочное поле: переносы строк сохраняются, пробелы внутри строки схлопываются
func (s *Sanitizer) TextareaField(raw string) string {
	clean := s.stripMarkup(raw)
	clean = strings.ReplaceAll(clean, "\r\n", "\n")
	clean = strings.ReplaceAll(clean, "\r", "\n")

	lines := strings.Split(clean, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
