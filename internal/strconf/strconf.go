// Package strconf parses strings.conf message templates and renders them.
package strconf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Category scopes template ids.
type Category string

const (
	System  Category = "system"
	Victory Category = "victory"
	Counter Category = "counter"
	Setname Category = "setname"
)

// ErrMissingArgument is returned when a template has more placeholders than
// arguments were given.
var ErrMissingArgument = errors.New("insufficient template arguments")

// Segment is either literal text or a placeholder.
type Segment struct {
	Text      string `json:"text,omitempty"`
	Verb      string `json:"verb,omitempty"`
	Index     int    `json:"index"`
	IsPayload bool   `json:"placeholder,omitempty"`
}

// Template is one parsed strings.conf entry.
type Template struct {
	Category Category
	ID       int
	RawID    string
	RawText  string
	Segments []Segment
}

var placeholderRE = regexp.MustCompile(`%ls|%d|%X`)

func parseSegments(text string) []Segment {
	var segs []Segment
	index := 0
	last := 0
	for _, loc := range placeholderRE.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Verb: text[loc[0]:loc[1]], Index: index, IsPayload: true})
		index++
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// Placeholders returns how many arguments the template consumes.
func (t *Template) Placeholders() int {
	n := 0
	for _, s := range t.Segments {
		if s.IsPayload {
			n++
		}
	}
	return n
}

// Instantiate fills the placeholders in order.
func (t *Template) Instantiate(args ...any) (string, error) {
	var b strings.Builder
	for _, s := range t.Segments {
		if !s.IsPayload {
			b.WriteString(s.Text)
			continue
		}
		if s.Index >= len(args) {
			return "", fmt.Errorf("%w: %s#%d wants %d, got %d", ErrMissingArgument, t.Category, t.ID, t.Placeholders(), len(args))
		}
		v, ok := format(s.Verb, args[s.Index])
		if !ok {
			return "", fmt.Errorf("%w: %s#%d argument %d is empty", ErrMissingArgument, t.Category, t.ID, s.Index)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func format(verb string, arg any) (string, bool) {
	switch v := arg.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case fmt.Stringer:
		return format(verb, v.String())
	}
	if verb == "%X" {
		return fmt.Sprintf("%X", arg), true
	}
	return fmt.Sprint(arg), true
}

// Templates indexes templates by category and id.
type Templates struct {
	entries map[Category]map[int]*Template
	// Skipped counts template lines whose id could not be parsed.
	Skipped int
}

// New returns an empty table.
func New() *Templates {
	return &Templates{entries: make(map[Category]map[int]*Template)}
}

// Add registers t, replacing any previous entry with the same id.
func (ts *Templates) Add(t *Template) {
	byID := ts.entries[t.Category]
	if byID == nil {
		byID = make(map[int]*Template)
		ts.entries[t.Category] = byID
	}
	byID[t.ID] = t
}

// Define parses text and registers it under category/id.
func (ts *Templates) Define(cat Category, id int, text string) {
	ts.Add(&Template{Category: cat, ID: id, RawID: strconv.Itoa(id), RawText: text, Segments: parseSegments(text)})
}

// Lookup finds a template.
func (ts *Templates) Lookup(cat Category, id int) (*Template, bool) {
	if ts == nil {
		return nil, false
	}
	t, ok := ts.entries[cat][id]
	return t, ok
}

// Len returns the number of templates in the table.
func (ts *Templates) Len() int {
	if ts == nil {
		return 0
	}
	n := 0
	for _, byID := range ts.entries {
		n += len(byID)
	}
	return n
}

// Render instantiates a template for display. Lookup and argument failures
// yield a visible placeholder instead of an error.
func (ts *Templates) Render(cat Category, id int, args ...any) string {
	t, ok := ts.Lookup(cat, id)
	if !ok {
		return fmt.Sprintf("<<missing template: %s#%d>>", cat, id)
	}
	s, err := t.Instantiate(args...)
	if err != nil {
		return fmt.Sprintf("<<bad template arguments: %s#%d>>", cat, id)
	}
	return s
}

// Parse reads strings.conf content. Only lines starting with '!' are
// templates: "!<category> <id> <text>", with decimal or 0x-prefixed ids.
func Parse(r io.Reader) (*Templates, error) {
	ts := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "!") {
			continue
		}
		t, ok := parseLine(line[1:])
		if !ok {
			ts.Skipped++
			continue
		}
		ts.Add(t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading strings: %w", err)
	}
	return ts, nil
}

// Load parses the strings.conf file at path.
func Load(path string) (*Templates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening strings: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func parseLine(line string) (*Template, bool) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return nil, false
	}
	rawID := parts[1]
	var (
		id  int64
		err error
	)
	if strings.HasPrefix(rawID, "0x") || strings.HasPrefix(rawID, "0X") {
		id, err = strconv.ParseInt(rawID[2:], 16, 64)
	} else {
		id, err = strconv.ParseInt(rawID, 10, 64)
	}
	if err != nil {
		return nil, false
	}
	text := ""
	if len(parts) == 3 {
		text = parts[2]
	}
	return &Template{
		Category: Category(parts[0]),
		ID:       int(id),
		RawID:    rawID,
		RawText:  text,
		Segments: parseSegments(text),
	}, true
}
