package safety

// Pipeline runs guards in order. Every outbound payload goes through it.
type Pipeline struct {
	guards []Guard
}

// NewPipeline builds the standard tone then ethics pipeline. observer may be nil.
func NewPipeline(observer Observer) *Pipeline {
	tone := NewToneGuard()
	tone.OnRewrite = observer
	ethics := NewEthicsGuard()
	ethics.OnRewrite = observer
	return NewPipelineWith(tone, ethics)
}

func NewPipelineWith(guards ...Guard) *Pipeline {
	return &Pipeline{guards: guards}
}

// Apply passes a container payload through every guard. Other values come back unchanged.
func (p *Pipeline) Apply(payload any) any {
	for _, g := range p.guards {
		payload = g.Apply(payload)
	}
	return payload
}

// Text rewrites a single outbound message.
func (p *Pipeline) Text(s string) string {
	for _, g := range p.guards {
		s = g.Rewrite(s)
	}
	return s
}

// Strings rewrites each message and returns a new slice.
func (p *Pipeline) Strings(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = p.Text(s)
	}
	return out
}
