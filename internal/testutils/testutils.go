// Package testutils generates schedule and action test data.
package testutils

import (
	"fmt"
	"strings"
	"time"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/brianvoe/gofakeit/v7"
)

var (
	games      = []string{"Celeste", "Super Metroid", "Hollow Knight", "Ocarina of Time", "Portal 2", "Super Mario 64"}
	categories = []string{"Any%", "100%", "Low%", "Glitchless", "All Bosses"}
	platforms  = []string{"PC", "SNES", "N64", "Switch", "PS2"}
)

// TestDataGenerator provides methods to create test data.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator creates a generator. Without a seed the output
// differs per run.
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	var s uint64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = uint64(time.Now().UnixNano())
	}
	return &TestDataGenerator{faker: gofakeit.New(s), seed: s}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() uint64 {
	return g.seed
}

// Member returns a valid member without an ID. The canonical store assigns
// one on create.
func (g *TestDataGenerator) Member() scheduledomain.Member {
	channel := strings.ToLower(g.faker.Username())
	m := scheduledomain.Member{
		Name:          g.faker.Name(),
		Gender:        g.faker.Gender(),
		PrimaryTwitch: channel,
	}
	if g.faker.Bool() {
		m.SecondaryTwitch = channel + "_alt"
		m.StreamAt = m.SecondaryTwitch
	}
	if g.faker.Bool() {
		m.Link = g.faker.URL()
	}
	return m
}

// Members returns count members.
func (g *TestDataGenerator) Members(count int) []scheduledomain.Member {
	out := make([]scheduledomain.Member, count)
	for i := range out {
		out[i] = g.Member()
	}
	return out
}

// Run returns a valid run with the given members as runners.
func (g *TestDataGenerator) Run(runners ...scheduledomain.Member) scheduledomain.Run {
	return scheduledomain.Run{
		Game:     g.faker.RandomString(games),
		Category: g.faker.RandomString(categories),
		Platform: g.faker.RandomString(platforms),
		Estimate: fmt.Sprintf("%02d:%02d:00", g.faker.Number(0, 3), g.faker.Number(0, 59)),
		Year:     fmt.Sprint(g.faker.Number(1985, 2025)),
		Runners:  append([]scheduledomain.Member{}, runners...),
		Hosts:    []scheduledomain.Member{},
		Comments: []scheduledomain.Member{},
	}
}

// ExportButton returns a visible button exporting files to destination.
func (g *TestDataGenerator) ExportButton(destination string) actiondomain.ActionButton {
	return actiondomain.ActionButton{
		Label:  g.faker.RandomString(games),
		Color:  "primary",
		IsShow: true,
		Actions: []actiondomain.ActionModule{{
			Action:    actiondomain.ActionExportFiles,
			IsEnabled: true,
			ExportFiles: &actiondomain.ExportFilesAction{
				Component: actiondomain.ComponentExportAll,
				Value:     destination,
			},
		}},
	}
}
