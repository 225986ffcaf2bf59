package score

// Builder assembles a Score by hand.
//
//	s := score.NewBuilder().Title("t").Tempo(120).Time(score.Common).
//		NewLayer().Measure(m1, m2).SaveLayer().
//		Build()
type Builder struct {
	score Score
}

func NewBuilder() *Builder {
	return &Builder{score: Score{Time: Common}}
}

func (b *Builder) Title(title string) *Builder {
	b.score.Title = title
	return b
}

func (b *Builder) Artist(artist string) *Builder {
	b.score.Artist = artist
	return b
}

// Tempo sets beats per minute.
func (b *Builder) Tempo(bpm int) *Builder {
	b.score.Tempo = bpm
	return b
}

// Time sets the score's time signature. Layers started afterwards inherit it.
func (b *Builder) Time(t TimeSignature) *Builder {
	b.score.Time = t
	return b
}

// NewLayer starts a layer in the current time signature.
func (b *Builder) NewLayer() *LayerBuilder {
	return &LayerBuilder{parent: b, layer: Layer{Time: b.score.Time}}
}

// Build returns the score. The builder can keep adding layers to later builds
// without affecting scores already returned.
func (b *Builder) Build() *Score {
	s := b.score
	s.Layers = append([]Layer(nil), b.score.Layers...)
	return &s
}

type LayerBuilder struct {
	parent *Builder
	layer  Layer
}

func (lb *LayerBuilder) Measure(measures ...Measure) *LayerBuilder {
	lb.layer.Measures = append(lb.layer.Measures, measures...)
	return lb
}

// SaveLayer appends the layer to the score and returns the score builder.
func (lb *LayerBuilder) SaveLayer() *Builder {
	lb.parent.score.Layers = append(lb.parent.score.Layers, lb.layer)
	return lb.parent
}
