package safety

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneGuard_Rewrite(t *testing.T) {
	g := NewToneGuard()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean text untouched", in: "take your time. no rush.", want: "take your time. no rush."},
		{name: "leading directive", in: "You should text them first.", want: "You may consider text them first."},
		{name: "case insensitive", in: "Honestly YOU MUST relax.", want: "Honestly you may consider relax."},
		{name: "first occurrence only", in: "you should call. you should wait.", want: "You may consider call. you should wait."},
		{name: "several phrases", in: "act now, this will work", want: "You may consider, you may consider"},
		{name: "curly apostrophe", in: "don’t miss the chance", want: "You may consider the chance"},
		{name: "straight apostrophe is not a rule", in: "don't miss the chance", want: "don't miss the chance"},
		{name: "unicode before match", in: "café: guaranteed fun", want: "Café: you may consider fun"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Rewrite(tt.in))
		})
	}
}

func TestEthicsGuard_Rewrite(t *testing.T) {
	g := NewEthicsGuard()

	assert.Equal(t, Disclaimer, g.Rewrite("Maybe just KISS THEM at the end."))
	assert.Equal(t, Disclaimer, g.Rewrite("you're a solid 7/10"))
	assert.Equal(t, Disclaimer, g.Rewrite("Prove yourself tonight"))
	assert.Equal(t, "Enjoy the walk.", g.Rewrite("Enjoy the walk."))
}

func TestApplyEthicsGuard_NestedPayload(t *testing.T) {
	payload := map[string]any{
		"title": "Before the date",
		"tips": []any{
			"Pick a quiet place.",
			map[string]any{
				"deep": []any{"then kiss them goodnight", 42, true, nil},
			},
		},
		"labels": []string{"calm", "you will regret it"},
	}

	got := ApplyEthicsGuard(payload)

	want := map[string]any{
		"title": "Before the date",
		"tips": []any{
			"Pick a quiet place.",
			map[string]any{
				"deep": []any{Disclaimer, 42, true, nil},
			},
		},
		"labels": []string{"calm", Disclaimer},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "then kiss them goodnight",
		payload["tips"].([]any)[1].(map[string]any)["deep"].([]any)[0], "input must not be modified")
}

func TestGuards_CleanInputIsDeepEqual(t *testing.T) {
	type tip struct {
		Title string
		Steps []string
		Score int
		note  string
	}
	payloads := []any{
		map[string]any{"a": "hello", "b": []any{1.5, false, nil, map[string]any{}}},
		[]any{},
		[]string{"one", "two"},
		map[string]string{"k": "v"},
		tip{Title: "Walk", Steps: []string{"meet", "talk"}, Score: 3, note: "x"},
		&tip{Title: "Walk"},
		map[string][]string{"x": {"y"}, "nil": nil},
		[2]string{"a", "b"},
	}

	for _, p := range payloads {
		assert.Equal(t, p, ApplyToneGuard(p))
		assert.Equal(t, p, ApplyEthicsGuard(p))
	}
}

func TestGuards_NonContainersPassThrough(t *testing.T) {
	assert.Nil(t, ApplyToneGuard(nil))
	assert.Equal(t, "you should go", ApplyToneGuard("you should go"))
	assert.Equal(t, "kiss them", ApplyEthicsGuard("kiss them"))
	assert.Equal(t, 7, ApplyEthicsGuard(7))

	var nilMap map[string]any
	assert.Nil(t, ApplyToneGuard(nilMap))
}

func TestGuards_Structs(t *testing.T) {
	type stage struct {
		Stage    string
		Features []string
		Message  string
	}
	in := &stage{Stage: "x", Features: []string{"you should rest"}, Message: "kiss him"}

	out := ApplyEthicsGuard(ApplyToneGuard(in))

	s, ok := out.(*stage)
	require.True(t, ok)
	assert.Equal(t, []string{"You may consider rest"}, s.Features)
	assert.Equal(t, Disclaimer, s.Message)
	assert.Equal(t, "kiss him", in.Message)
}

func TestGuards_EmbeddedStructFields(t *testing.T) {
	type note struct {
		Text string
	}
	type card struct {
		note
		Title string
	}
	in := card{note: note{Text: "kiss them now"}, Title: "ok"}

	out, ok := ApplyEthicsGuard(in).(card)
	require.True(t, ok)
	assert.Equal(t, Disclaimer, out.Text)
	assert.Equal(t, "ok", out.Title)
	assert.Equal(t, "kiss them now", in.Text)

	toned, ok := ApplyToneGuard(card{note: note{Text: "you should rest"}}).(card)
	require.True(t, ok)
	assert.Equal(t, "You may consider rest", toned.Text)
}

func TestPipeline(t *testing.T) {
	var (
		mu    sync.Mutex
		fired []string
	)
	p := NewPipeline(func(guard string, rule Rule) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, guard+":"+rule.Category)
	})

	out := p.Apply(map[string]any{
		"a": "You must stay calm.",
		"b": "She is hotter than you",
	})

	assert.Equal(t, map[string]any{
		"a": "You may consider stay calm.",
		"b": Disclaimer,
	}, out)
	assert.ElementsMatch(t, []string{"tone:directive", "ethics:attractiveness_ranking"}, fired)

	assert.Equal(t, "You may consider breathe", p.Text("you should breathe"))
	assert.Equal(t, []string{"ok", Disclaimer}, p.Strings([]string{"ok", "have sex"}))
}

func TestPipeline_ConcurrentUse(t *testing.T) {
	p := NewPipeline(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := p.Apply([]any{"last chance to reply"})
			assert.Equal(t, []any{"You may consider to reply"}, out)
		}()
	}
	wg.Wait()
}
