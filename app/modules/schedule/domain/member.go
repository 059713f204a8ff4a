package scheduledomain

import (
	"errors"
	"strings"
)

var (
	ErrMemberNameRequired = errors.New("member name is required")
	ErrInvalidStreamAt    = errors.New("streamAt must be empty or one of the member's channels")
)

// Image is a picture attached to a member or a run.
type Image struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Field resolves template placeholders such as {images[url]}.
func (i Image) Field(name string) string {
	switch name {
	case "id":
		return i.ID
	case "name":
		return i.Name
	case "url":
		return i.URL
	}
	return ""
}

// Member is a runner, host or commentator. One canonical value exists per ID;
// runs hold copies that the schedule service keeps in sync.
type Member struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Gender          string  `json:"gender,omitempty"`
	PrimaryTwitch   string  `json:"primaryTwitch,omitempty"`
	SecondaryTwitch string  `json:"secondaryTwitch,omitempty"`
	StreamAt        string  `json:"streamAt,omitempty"`
	Link            string  `json:"link,omitempty"`
	Images          []Image `json:"images,omitempty"`
}

// Validate checks the member invariants.
func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMemberNameRequired
	}
	if m.StreamAt != "" && m.StreamAt != m.PrimaryTwitch && m.StreamAt != m.SecondaryTwitch {
		return ErrInvalidStreamAt
	}
	return nil
}

// Channel is the channel the member streams on: StreamAt, else PrimaryTwitch.
func (m Member) Channel() string {
	if m.StreamAt != "" {
		return m.StreamAt
	}
	return m.PrimaryTwitch
}

// LinkURL is Link, else the member's primary twitch page, else "".
func (m Member) LinkURL() string {
	if m.Link != "" {
		return m.Link
	}
	if m.PrimaryTwitch != "" {
		return "twitch.tv/" + m.PrimaryTwitch
	}
	return ""
}

// Field resolves template placeholders such as {runners[primaryTwitch,name]}.
func (m Member) Field(name string) string {
	switch name {
	case "id":
		return m.ID
	case "name":
		return m.Name
	case "gender":
		return m.Gender
	case "primaryTwitch":
		return m.PrimaryTwitch
	case "secondaryTwitch":
		return m.SecondaryTwitch
	case "streamAt":
		return m.StreamAt
	case "link":
		return m.Link
	}
	return ""
}

func (m Member) clone() Member {
	m.Images = append([]Image(nil), m.Images...)
	return m
}
