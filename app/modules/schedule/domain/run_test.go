package scheduledomain

import (
	"errors"
	"testing"
	"time"

	"github.com/Black-And-White-Club/marathon-manager/pkg/textgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberValidate(t *testing.T) {
	tests := []struct {
		name   string
		member Member
		want   error
	}{
		{name: "valid without streamAt", member: Member{Name: "A", PrimaryTwitch: "a"}},
		{name: "streamAt primary", member: Member{Name: "A", PrimaryTwitch: "a", StreamAt: "a"}},
		{name: "streamAt secondary", member: Member{Name: "A", PrimaryTwitch: "a", SecondaryTwitch: "a2", StreamAt: "a2"}},
		{name: "streamAt elsewhere", member: Member{Name: "A", PrimaryTwitch: "a", StreamAt: "b"}, want: ErrInvalidStreamAt},
		{name: "missing name", member: Member{Name: "  "}, want: ErrMemberNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestMemberLinkAndChannel(t *testing.T) {
	assert.Equal(t, "https://x.com/a", Member{Link: "https://x.com/a", PrimaryTwitch: "a"}.LinkURL())
	assert.Equal(t, "twitch.tv/a", Member{PrimaryTwitch: "a"}.LinkURL())
	assert.Equal(t, "", Member{Name: "nobody"}.LinkURL())

	assert.Equal(t, "alt", Member{PrimaryTwitch: "main", SecondaryTwitch: "alt", StreamAt: "alt"}.Channel())
	assert.Equal(t, "main", Member{PrimaryTwitch: "main"}.Channel())
}

func TestRunValidateAndEstimate(t *testing.T) {
	assert.ErrorIs(t, Run{}.Validate(), ErrRunGameRequired)
	assert.ErrorIs(t, Run{Game: "g", Estimate: "1:2"}.Validate(), ErrInvalidEstimate)
	assert.NoError(t, Run{Game: "g", Estimate: "01:30:00"}.Validate())

	d, err := Run{Estimate: "01:30:15"}.EstimateDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Hour+30*time.Minute+15*time.Second, d)
}

func TestRunReplaceAndRemoveMember(t *testing.T) {
	a := Member{ID: "a", Name: "A"}
	b := Member{ID: "b", Name: "B"}
	c := Member{ID: "c", Name: "C"}
	run := Run{
		Runners:  []Member{a, b, c},
		Hosts:    []Member{b},
		Comments: []Member{c, b},
	}

	changed := run.ReplaceMember(Member{ID: "b", Name: "B2"})
	assert.True(t, changed)
	assert.Equal(t, []string{"A", "B2", "C"}, names(run.Runners))
	assert.Equal(t, []string{"B2"}, names(run.Hosts))
	assert.Equal(t, []string{"C", "B2"}, names(run.Comments))

	changed = run.RemoveMember("b")
	assert.True(t, changed)
	assert.Equal(t, []string{"A", "C"}, names(run.Runners))
	assert.Empty(t, run.Hosts)
	assert.Equal(t, []string{"C"}, names(run.Comments))

	assert.False(t, run.RemoveMember("zzz"))
	assert.False(t, run.ReplaceMember(Member{ID: "zzz"}))
}

func TestRunCloneIsDeep(t *testing.T) {
	run := Run{
		Runners: []Member{{ID: "a", Name: "A", Images: []Image{{ID: "i"}}}},
		Fields:  map[string]string{"event": "ESA"},
	}
	clone := run.Clone()
	clone.Runners[0].Name = "changed"
	clone.Runners[0].Images[0].ID = "changed"
	clone.Fields["event"] = "changed"

	assert.Equal(t, "A", run.Runners[0].Name)
	assert.Equal(t, "i", run.Runners[0].Images[0].ID)
	assert.Equal(t, "ESA", run.Fields["event"])
}

func TestRunRendersThroughTemplates(t *testing.T) {
	engine := textgen.New(textgen.WithLineSeparator("\n"))
	run := Run{
		Game:     "Celeste",
		Category: "Any%",
		Runners: []Member{
			{ID: "1", Name: "A"},
			{ID: "2", Name: "B", PrimaryTwitch: "bee"},
		},
		Fields: map[string]string{"marathon": "Summer Sprint"},
	}

	assert.Equal(t, "A, B", engine.Generate("<loop property='runners' separator=', ' prefix=''>{runners[name]}</loop>", run, 0))
	assert.Equal(t, "A @bee", engine.Generate("<loop property='runners' separator=' ' prefix='@,'>{runners[primaryTwitch,name]}</loop>", run, 0))
	assert.Equal(t, "", engine.Generate("<item property='runners' index='5'>{runners[name]}</item>", run, 0))
	assert.Equal(t, "Summer Sprint: Celeste Any%", engine.Generate("{marathon}: {game} {category}", run, 0))
}

func TestEventRunIndexAndClone(t *testing.T) {
	start := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{ID: "e", Runs: []Run{{ID: "r1"}, {ID: "r2"}}, StartsAt: &start}
	assert.Equal(t, 1, ev.RunIndex("r2"))
	assert.Equal(t, -1, ev.RunIndex("missing"))

	clone := ev.Clone()
	clone.Runs[0].ID = "changed"
	*clone.StartsAt = start.Add(time.Hour)
	assert.Equal(t, "r1", ev.Runs[0].ID)
	assert.Equal(t, start, *ev.StartsAt)
}

func names(ms []Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}
