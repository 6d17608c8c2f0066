package model

// DefaultHistorySize keeps enough generations to spot period 2 and 3 oscillators
const DefaultHistorySize = 5

// History stores recent grid hashes for cycle detection
type History struct {
	size   int
	hashes []string
}

// NewHistory creates a history holding at most size hashes
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Record adds a hash and drops the oldest one past capacity
func (h *History) Record(hash string) {
	h.hashes = append(h.hashes, hash)
	if len(h.hashes) > h.size {
		h.hashes = h.hashes[1:]
	}
}

// Repeats checks whether hash matches one of the last three recorded generations,
// i.e. the board is a still life or a period 2/3 oscillator
func (h *History) Repeats(hash string) bool {
	n := len(h.hashes)
	for i := 1; i <= 3 && i <= n; i++ {
		if h.hashes[n-i] == hash {
			return true
		}
	}
	return false
}

// Reset forgets every recorded hash
func (h *History) Reset() {
	h.hashes = nil
}

// Len returns the number of hashes held
func (h *History) Len() int {
	return len(h.hashes)
}
