// Package textgen renders user-authored templates against run data.
//
// The template language has four constructs, applied in order:
//
//	<loop property='runners' separator=', ' prefix='@,'>{runners[primaryTwitch,name]}</loop>
//	<item property='hosts' index='0'>{hosts[name]}</item>
//	{game}
//
// followed by optional word wrapping and normalisation of typed "\n" escapes.
// Rendering never fails: unknown fields and out-of-range indices render empty.
package textgen

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Record is one element of a sequence property (a runner, a host, an image).
type Record interface {
	Field(name string) string
}

// Source is the data a template is rendered against.
type Source interface {
	// Field returns a scalar field and whether it is known.
	Field(name string) (string, bool)
	// Sequence returns the ordered records held by property, or nil.
	Sequence(property string) []Record
}

var (
	loopPattern = regexp.MustCompile(`(?s)<loop\s+property='([^']*)'\s+separator='([^']*)'\s+prefix='([^']*)'\s*>(.*?)</loop>`)
	itemPattern = regexp.MustCompile(`(?s)<item\s+property='([^']*)'\s+index='([^']*)'\s*>(.*?)</item>`)
	flatPattern = regexp.MustCompile(`\{(\w+)\}`)
)

// Engine renders templates. The zero value is not usable; call New.
type Engine struct {
	separator string
	repeat    bool
	escapes   *strings.Replacer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLineSeparator overrides the platform line separator.
func WithLineSeparator(sep string) Option {
	return func(e *Engine) { e.separator = sep }
}

// WithRepeat processes every loop and item construct instead of only the first of each.
func WithRepeat() Option {
	return func(e *Engine) { e.repeat = true }
}

// New builds an Engine using the platform line separator unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{separator: PlatformLineSeparator()}
	for _, opt := range opts {
		opt(e)
	}
	// Typed escape sequences, longest first.
	e.escapes = strings.NewReplacer(`\r\n`, e.separator, `\r`, e.separator, `\n`, e.separator)
	return e
}

// PlatformLineSeparator is CRLF on Windows and LF elsewhere.
func PlatformLineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

var defaultEngine = New()

// Generate renders template with the default engine.
func Generate(template string, src Source, maxCharsPerLine int) string {
	return defaultEngine.Generate(template, src, maxCharsPerLine)
}

// LineSeparator reports the separator used for wrapping and escapes.
func (e *Engine) LineSeparator() string {
	return e.separator
}

// Generate renders template against src. maxCharsPerLine <= 0 disables wrapping.
func (e *Engine) Generate(template string, src Source, maxCharsPerLine int) string {
	out := e.replace(loopPattern, template, func(groups []string) string {
		return renderLoop(src, groups[1], groups[2], groups[3], groups[4])
	})
	out = e.replace(itemPattern, out, func(groups []string) string {
		return renderItem(src, groups[1], groups[2], groups[3])
	})
	out = flatPattern.ReplaceAllStringFunc(out, func(m string) string {
		name := m[1 : len(m)-1]
		if src == nil {
			return ""
		}
		v, _ := src.Field(name)
		return v
	})
	if maxCharsPerLine > 0 {
		out = wrap(out, maxCharsPerLine, e.separator)
	}
	return e.escapes.Replace(out)
}

// replace substitutes the first match of re, or every match in repeat mode.
func (e *Engine) replace(re *regexp.Regexp, s string, render func(groups []string) string) string {
	if e.repeat {
		return re.ReplaceAllStringFunc(s, func(m string) string {
			return render(re.FindStringSubmatch(m))
		})
	}
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return s[:loc[0]] + render(groups) + s[loc[1]:]
}

func renderLoop(src Source, property, separator, prefix, body string) string {
	if src == nil {
		return ""
	}
	prefixes := strings.Split(prefix, ",")
	records := src.Sequence(property)
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		parts = append(parts, substitute(body, property, rec, prefixes))
	}
	return strings.Join(parts, separator)
}

func renderItem(src Source, property, index, body string) string {
	var rec Record
	if src != nil {
		records := src.Sequence(property)
		if n, err := strconv.Atoi(strings.TrimSpace(index)); err == nil && n >= 0 && n < len(records) {
			rec = records[n]
		}
	}
	return substitute(body, property, rec, nil)
}

// substitute resolves {property[f1,f2,...]} placeholders in body for one record.
// A nil record renders every placeholder empty.
func substitute(body, property string, rec Record, prefixes []string) string {
	re := placeholderPattern(property)
	return re.ReplaceAllStringFunc(body, func(m string) string {
		if rec == nil {
			return ""
		}
		fields := strings.Split(re.FindStringSubmatch(m)[1], ",")
		for i, f := range fields {
			v := rec.Field(strings.TrimSpace(f))
			if v == "" {
				continue
			}
			if i < len(prefixes) {
				return prefixes[i] + v
			}
			return v
		}
		return ""
	})
}

func placeholderPattern(property string) *regexp.Regexp {
	return regexp.MustCompile(`\{` + regexp.QuoteMeta(property) + `\[([^\]]*)\]\}`)
}

// wrap breaks each line greedily on whitespace so no line exceeds width runes,
// unless a single word is longer than width.
func wrap(s string, width int, sep string) string {
	in := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	var lines []string
	for _, line := range in {
		words := strings.Fields(line)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		curLen := runeLen(cur)
		for _, w := range words[1:] {
			wl := runeLen(w)
			if curLen+1+wl > width {
				lines = append(lines, cur)
				cur, curLen = w, wl
				continue
			}
			cur += " " + w
			curLen += 1 + wl
		}
		lines = append(lines, cur)
	}
	return strings.Join(lines, sep)
}

func runeLen(s string) int {
	return len([]rune(s))
}
