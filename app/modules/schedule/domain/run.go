package scheduledomain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/marathon-manager/pkg/textgen"
)

var (
	ErrRunGameRequired = errors.New("run game is required")
	ErrInvalidEstimate = errors.New("estimate must be HH:MM:SS")
)

var estimatePattern = regexp.MustCompile(`^(\d{1,3}):([0-5]\d):([0-5]\d)$`)

// Role selects one of a run's member lists.
type Role string

const (
	RoleRunner      Role = "runner"
	RoleHost        Role = "host"
	RoleCommentator Role = "commentator"
)

// Run is one scheduled speedrun. Member order is significant: templates
// address members by index.
type Run struct {
	ID       string   `json:"id"`
	Game     string   `json:"game"`
	Category string   `json:"category"`
	Platform string   `json:"platform"`
	Estimate string   `json:"estimate"`
	Year     string   `json:"year,omitempty"`
	Runners  []Member `json:"runners"`
	Hosts    []Member `json:"hosts"`
	Comments []Member `json:"comments"`
	Images   []Image  `json:"images,omitempty"`
	SEOTitle string   `json:"seoTitle,omitempty"`
	SEOGame  string   `json:"seoGame,omitempty"`
	// Fields holds user-defined template fields beyond the well-known ones.
	Fields map[string]string `json:"fields,omitempty"`
}

// Validate checks the run invariants that do not depend on the owning event.
func (r Run) Validate() error {
	if r.Game == "" {
		return ErrRunGameRequired
	}
	if r.Estimate != "" && !estimatePattern.MatchString(r.Estimate) {
		return fmt.Errorf("%w: %q", ErrInvalidEstimate, r.Estimate)
	}
	return nil
}

// EstimateDuration parses Estimate; an empty estimate is zero.
func (r Run) EstimateDuration() (time.Duration, error) {
	if r.Estimate == "" {
		return 0, nil
	}
	m := estimatePattern.FindStringSubmatch(r.Estimate)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEstimate, r.Estimate)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return time.Duration(h)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second, nil
}

// Members returns the list for role.
func (r Run) Members(role Role) []Member {
	switch role {
	case RoleRunner:
		return r.Runners
	case RoleHost:
		return r.Hosts
	case RoleCommentator:
		return r.Comments
	}
	return nil
}

// Field implements textgen.Source.
func (r Run) Field(name string) (string, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "game":
		return r.Game, true
	case "category":
		return r.Category, true
	case "platform":
		return r.Platform, true
	case "estimate":
		return r.Estimate, true
	case "year":
		return r.Year, true
	case "seoTitle":
		return r.SEOTitle, true
	case "seoGame":
		return r.SEOGame, true
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Sequence implements textgen.Source.
func (r Run) Sequence(property string) []textgen.Record {
	var out []textgen.Record
	switch property {
	case "runners", "hosts", "comments":
		members := r.Runners
		if property == "hosts" {
			members = r.Hosts
		} else if property == "comments" {
			members = r.Comments
		}
		out = make([]textgen.Record, len(members))
		for i, m := range members {
			out[i] = m
		}
	case "images":
		out = make([]textgen.Record, len(r.Images))
		for i, img := range r.Images {
			out[i] = img
		}
	}
	return out
}

// ReplaceMember swaps every entry with m.ID for m, keeping positions.
func (r *Run) ReplaceMember(m Member) bool {
	changed := false
	for _, list := range []*[]Member{&r.Runners, &r.Hosts, &r.Comments} {
		for i := range *list {
			if (*list)[i].ID == m.ID {
				(*list)[i] = m.clone()
				changed = true
			}
		}
	}
	return changed
}

// RemoveMember drops every entry with id, keeping the order of the rest.
func (r *Run) RemoveMember(id string) bool {
	changed := false
	for _, list := range []*[]Member{&r.Runners, &r.Hosts, &r.Comments} {
		kept := (*list)[:0]
		for _, m := range *list {
			if m.ID == id {
				changed = true
				continue
			}
			kept = append(kept, m)
		}
		*list = kept
	}
	return changed
}

// Clone returns a deep copy.
func (r Run) Clone() Run {
	r.Runners = cloneMembers(r.Runners)
	r.Hosts = cloneMembers(r.Hosts)
	r.Comments = cloneMembers(r.Comments)
	r.Images = append([]Image(nil), r.Images...)
	if r.Fields != nil {
		fields := make(map[string]string, len(r.Fields))
		for k, v := range r.Fields {
			fields[k] = v
		}
		r.Fields = fields
	}
	return r
}

func cloneMembers(in []Member) []Member {
	if in == nil {
		return nil
	}
	out := make([]Member, len(in))
	for i, m := range in {
		out[i] = m.clone()
	}
	return out
}
