package textgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecord map[string]string

func (r fakeRecord) Field(name string) string { return r[name] }

type fakeSource struct {
	fields map[string]string
	seqs   map[string][]Record
}

func (s fakeSource) Field(name string) (string, bool) {
	v, ok := s.fields[name]
	return v, ok
}

func (s fakeSource) Sequence(property string) []Record { return s.seqs[property] }

func newSource() fakeSource {
	return fakeSource{
		fields: map[string]string{"game": "Super Mario 64", "category": "16 Star", "estimate": "00:16:00"},
		seqs: map[string][]Record{
			"runners": {
				fakeRecord{"name": "A", "primaryTwitch": ""},
				fakeRecord{"name": "B", "primaryTwitch": "bee"},
			},
			"hosts": {fakeRecord{"name": "Host One"}},
		},
	}
}

func TestGenerate(t *testing.T) {
	engine := New(WithLineSeparator("\n"))

	tests := []struct {
		name     string
		template string
		max      int
		want     string
	}{
		{
			name:     "loop joins records with separator",
			template: "<loop property='runners' separator=', ' prefix=''>{runners[name]}</loop>",
			want:     "A, B",
		},
		{
			name:     "first non-empty field takes the prefix at its position",
			template: "<loop property='runners' separator=' ' prefix='@,'>{runners[primaryTwitch,name]}</loop>",
			want:     "A @bee",
		},
		{
			name:     "loop body keeps literal text per record",
			template: "Runners: <loop property='runners' separator=' vs ' prefix=''>[{runners[name]}]</loop>!",
			want:     "Runners: [A] vs [B]!",
		},
		{
			name:     "loop over unknown property renders empty",
			template: "x<loop property='commentators' separator=', ' prefix=''>{commentators[name]}</loop>y",
			want:     "xy",
		},
		{
			name:     "only the first loop is processed",
			template: "<loop property='runners' separator=',' prefix=''>{runners[name]}</loop>|<loop property='hosts' separator=',' prefix=''>{hosts[name]}</loop>",
			want:     "A,B|<loop property='hosts' separator=',' prefix=''>{hosts[name]}</loop>",
		},
		{
			name:     "item selects by index",
			template: "<item property='runners' index='1'>{runners[name]}</item>",
			want:     "B",
		},
		{
			name:     "item out of range renders empty substitution",
			template: "<item property='runners' index='5'>{runners[name]}</item>",
			want:     "",
		},
		{
			name:     "item out of range keeps body text",
			template: "<item property='runners' index='5'>Runner: {runners[name]}</item>",
			want:     "Runner: ",
		},
		{
			name:     "flat fields and unknown fields",
			template: "{game} - {category}{missing}",
			want:     "Super Mario 64 - 16 Star",
		},
		{
			name:     "constructs combine",
			template: "{game} by <loop property='runners' separator=' & ' prefix=''>{runners[name]}</loop>, hosted by <item property='hosts' index='0'>{hosts[name]}</item>",
			want:     "Super Mario 64 by A & B, hosted by Host One",
		},
		{
			name:     "greedy word wrap",
			template: "{game} is a very long title",
			max:      10,
			want:     "Super\nMario 64\nis a very\nlong title",
		},
		{
			name:     "wrap keeps words longer than the width whole",
			template: "Supercalifragilistic run",
			max:      5,
			want:     "Supercalifragilistic\nrun",
		},
		{
			name:     "typed escapes become line separators",
			template: `{game}\n{category}\r\n{estimate}\rend`,
			want:     "Super Mario 64\n16 Star\n00:16:00\nend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Generate(tt.template, newSource(), tt.max)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateRepeatMode(t *testing.T) {
	engine := New(WithLineSeparator("\n"), WithRepeat())

	got := engine.Generate(
		"<loop property='runners' separator=',' prefix=''>{runners[name]}</loop>|<loop property='hosts' separator=',' prefix=''>{hosts[name]}</loop>|<item property='runners' index='0'>{runners[name]}</item><item property='runners' index='1'>{runners[name]}</item>",
		newSource(), 0)

	assert.Equal(t, "A,B|Host One|AB", got)
}

func TestGenerateCRLFSeparator(t *testing.T) {
	engine := New(WithLineSeparator("\r\n"))

	assert.Equal(t, "a\r\nb\r\nc", engine.Generate(`a\nb\r\nc`, newSource(), 0))
	assert.Equal(t, "one two\r\nthree", engine.Generate("one two three", newSource(), 7))
}

func TestGenerateIsDeterministic(t *testing.T) {
	template := "<loop property='runners' separator=', ' prefix='@,'>{runners[primaryTwitch,name]}</loop> - {game}"
	first := Generate(template, newSource(), 12)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Generate(template, newSource(), 12))
	}
}

func TestGenerateNilSource(t *testing.T) {
	assert.NotPanics(t, func() {
		out := New(WithLineSeparator("\n")).Generate("{game}<loop property='runners' separator=',' prefix=''>{runners[name]}</loop><item property='runners' index='0'>x{runners[name]}</item>", nil, 0)
		assert.Equal(t, "x", out)
	})
}

func TestLint(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		wantErr   bool
		construct string
	}{
		{name: "plain text", template: "{game} - {category}"},
		{name: "balanced", template: "<loop property='runners' separator=', ' prefix=''>{runners[name]}</loop><item property='hosts' index='0'>{hosts[name]}</item>"},
		{name: "unclosed loop", template: "<loop property='runners' separator=', ' prefix=''>{runners[name]}", wantErr: true, construct: "loop"},
		{name: "stray closing item", template: "{game}</item>", wantErr: true, construct: "item"},
		{name: "bad item index", template: "<item property='hosts' index='x'>{hosts[name]}</item>", wantErr: true, construct: "item"},
		{name: "nested loop", template: "<loop property='a' separator='' prefix=''><loop property='b' separator='' prefix=''></loop></loop>", wantErr: true, construct: "loop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Lint(tt.template)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var tErr *TemplateError
			require.True(t, errors.As(err, &tErr))
			assert.Equal(t, tt.construct, tErr.Construct)
		})
	}
}

func TestLintDoesNotChangeRendering(t *testing.T) {
	template := "{game} <loop property='runners' separator=', ' prefix=''>{runners[name]}"
	require.Error(t, Lint(template))
	assert.Equal(t, "Super Mario 64 <loop property='runners' separator=', ' prefix=''>{runners[name]}",
		New(WithLineSeparator("\n")).Generate(template, newSource(), 0))
}
