package textgen

import (
	"fmt"
	"regexp"
)

// TemplateError describes a malformed construct. Rendering ignores it.
type TemplateError struct {
	Construct string
	Offset    int
	Reason    string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template: %s at offset %d: %s", e.Construct, e.Offset, e.Reason)
}

var tagPattern = regexp.MustCompile(`<(/?)(loop|item)\b[^>]*>`)

// Lint reports the first unbalanced or malformed loop/item tag in template.
func Lint(template string) error {
	open := map[string]int{}
	for _, loc := range tagPattern.FindAllStringSubmatchIndex(template, -1) {
		closing := loc[3] > loc[2]
		name := template[loc[4]:loc[5]]
		if closing {
			if _, ok := open[name]; !ok {
				return &TemplateError{Construct: name, Offset: loc[0], Reason: "closing tag without opening tag"}
			}
			delete(open, name)
			continue
		}
		if prev, ok := open[name]; ok {
			return &TemplateError{Construct: name, Offset: prev, Reason: "tag is not closed before the next one opens"}
		}
		tag := template[loc[0]:loc[1]]
		if !wellFormedOpening(name, tag) {
			return &TemplateError{Construct: name, Offset: loc[0], Reason: "missing or misordered attributes"}
		}
		open[name] = loc[0]
	}
	var unclosed *TemplateError
	for name, offset := range open {
		if unclosed == nil || offset < unclosed.Offset {
			unclosed = &TemplateError{Construct: name, Offset: offset, Reason: "tag is never closed"}
		}
	}
	if unclosed != nil {
		return unclosed
	}
	return nil
}

var (
	loopOpening = regexp.MustCompile(`^<loop\s+property='[^']*'\s+separator='[^']*'\s+prefix='[^']*'\s*>$`)
	itemOpening = regexp.MustCompile(`^<item\s+property='[^']*'\s+index='\d+'\s*>$`)
)

func wellFormedOpening(name, tag string) bool {
	if name == "loop" {
		return loopOpening.MatchString(tag)
	}
	return itemOpening.MatchString(tag)
}
