package noboiler

import "fmt"

// Pipeline is an opaque compiled render pipeline.
type Pipeline interface {
	Destroy()
}

// PipelineSet is the ordered collection of pipelines built by the init hook.
// Render hooks refer to pipelines by the position they were pushed at.
type PipelineSet struct {
	items []Pipeline
}

// Push appends p. Its index is the Len before the call.
func (s *PipelineSet) Push(p Pipeline) {
	s.items = append(s.items, p)
}

// Len returns the number of pipelines.
func (s *PipelineSet) Len() int {
	return len(s.items)
}

// At returns the pipeline pushed at position i.
//
// Asking for an index outside [0, Len()) is a caller error and panics.
func (s *PipelineSet) At(i int) Pipeline {
	if i < 0 || i >= len(s.items) {
		panic(fmt.Sprintf("noboiler: pipeline index %d out of range [0,%d)", i, len(s.items)))
	}
	return s.items[i]
}

func (s *PipelineSet) destroy() {
	for _, p := range s.items {
		if p != nil {
			p.Destroy()
		}
	}
	s.items = nil
}
