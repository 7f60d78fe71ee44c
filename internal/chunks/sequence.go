package chunks

import "path/filepath"

// Kind identifies a fragment stream.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Fragment is one located chunk file.
type Fragment struct {
	Index int
	Path  string
}

// Sequence is the ordered set of fragments found for one stream.
type Sequence struct {
	Kind      Kind
	Dir       string
	MaxIndex  int
	Fragments []Fragment
}

// Len returns the number of fragments found.
func (s Sequence) Len() int {
	return len(s.Fragments)
}

// Empty reports whether no fragment was found.
func (s Sequence) Empty() bool {
	return len(s.Fragments) == 0
}

// Paths returns the fragment paths in ascending index order.
func (s Sequence) Paths() []string {
	paths := make([]string, len(s.Fragments))
	for i, f := range s.Fragments {
		paths[i] = f.Path
	}
	return paths
}

// Highest returns the largest index found, or -1 when empty.
func (s Sequence) Highest() int {
	if len(s.Fragments) == 0 {
		return -1
	}
	return s.Fragments[len(s.Fragments)-1].Index
}

// Missing returns the indices absent between 0 and the highest index found.
func (s Sequence) Missing() []int {
	highest := s.Highest()
	if highest < 0 {
		return nil
	}
	present := make(map[int]struct{}, len(s.Fragments))
	for _, f := range s.Fragments {
		present[f.Index] = struct{}{}
	}
	var missing []int
	for i := 0; i <= highest; i++ {
		if _, ok := present[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Truncated reports whether a fragment exists at the last scanned index, in
// which case later fragments may have been ignored.
func (s Sequence) Truncated() bool {
	return s.MaxIndex > 0 && s.Highest() == s.MaxIndex-1
}

// Extension returns the file extension shared by the fragments, including the
// leading dot, or "" when the sequence is empty.
func (s Sequence) Extension() string {
	if len(s.Fragments) == 0 {
		return ""
	}
	return filepath.Ext(s.Fragments[0].Path)
}
