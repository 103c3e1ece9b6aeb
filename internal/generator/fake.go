package generator

import "fmt"

// Sequence is a deterministic Generator that cycles through fixed values.
// It is intended for tests and reproducible fixtures.
type Sequence struct {
	Words     []string
	Names     []string
	Addresses []string

	ids, words, names, addrs int
}

// NextID returns n1, n2, ...
func (s *Sequence) NextID() string {
	s.ids++
	return fmt.Sprintf("n%d", s.ids)
}

func (s *Sequence) NextWord() string {
	return pick(s.Words, &s.words, "word")
}

func (s *Sequence) NextName() string {
	return pick(s.Names, &s.names, "name")
}

func (s *Sequence) NextAddress() string {
	if len(s.Addresses) == 0 {
		s.addrs++
		return fmt.Sprintf("10.0.0.%d", s.addrs)
	}
	return pick(s.Addresses, &s.addrs, "")
}

func pick(values []string, cursor *int, fallback string) string {
	if len(values) == 0 {
		*cursor++
		return fmt.Sprintf("%s%d", fallback, *cursor)
	}
	v := values[*cursor%len(values)]
	*cursor++
	return v
}
