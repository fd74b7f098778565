package lut

import "sync"

var (
	generateOnce sync.Once
	generated    Tables
)

// Generate returns freshly allocated copies of the area and search tables
// computed from their definitions. The computation runs once per process.
func Generate() *Tables {
	generateOnce.Do(func() {
		generated = Tables{Area: generateArea(), Search: generateSearch()}
	})
	return &Tables{
		Area:   append([]byte(nil), generated.Area...),
		Search: append([]byte(nil), generated.Search...),
	}
}
