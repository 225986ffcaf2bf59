package score

import "github.com/cbegin/composer-go/internal/pitch"

// Mary returns "Mary Had a Little Lamb" as a melody layer over a bass layer.
func Mary() *Score {
	qb1 := Harp(pitch.B1, Quarter)
	qa1 := Harp(pitch.A1, Quarter)

	m1 := NewMeasure(qb1, qa1, Harp(pitch.G1, Quarter), qa1)             // mary had a
	m2 := NewMeasure(qb1, qb1, Harp(pitch.B1, Half))                     // little lamb,
	m3 := NewMeasure(qa1, qa1, Harp(pitch.A1, Half))                     // little lamb,
	m4 := NewMeasure(qb1, Harp(pitch.D2, Quarter), Harp(pitch.D2, Half)) // little lamb.
	m6 := NewMeasure(qb1, qb1, qb1, qb1)                                 // little lamb. Its
	m7 := NewMeasure(qa1, qa1, qb1, qa1)                                 // fleece was white as
	m8 := NewMeasure(Harp(pitch.G1, Whole))

	bass := func(p float64) Measure {
		return NewMeasure(NewNote(pitch.Bass, p, Whole))
	}
	b, a := bass(pitch.B0), bass(pitch.A0)

	return NewBuilder().
		Title("Mary Had a Little Lamb").
		Artist("Sarah Josepha Hale").
		Tempo(240).
		Time(Common).
		NewLayer().Measure(m1, m2, m3, m4, m1, m6, m7, m8).SaveLayer().
		NewLayer().Measure(b, b, a, b, b, b, a, bass(pitch.G0)).SaveLayer().
		Build()
}
