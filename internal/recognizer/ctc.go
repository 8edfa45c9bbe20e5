package recognizer

import (
	"fmt"
	"strings"
)

// Probs is a per-timestep character probability matrix of shape [T, C],
// row-major. One class index is reserved as the CTC blank.
type Probs struct {
	Data []float32
	T    int
	C    int
}

// Validate checks the tensor shape. A mismatch indicates a contract
// violation by the recognition network and is fatal.
func (p *Probs) Validate() error {
	if p == nil {
		return fmt.Errorf("probability matrix is nil")
	}
	if p.T <= 0 || p.C <= 0 {
		return fmt.Errorf("invalid probability matrix shape [%d, %d]", p.T, p.C)
	}
	if len(p.Data) != p.T*p.C {
		return fmt.Errorf("probability matrix length %d != %d for shape [%d, %d]",
			len(p.Data), p.T*p.C, p.T, p.C)
	}
	return nil
}

// Row returns the class probabilities at timestep t.
func (p *Probs) Row(t int) []float32 {
	return p.Data[t*p.C : (t+1)*p.C]
}

// argmax returns the index of the maximum value. Ties go to the lower index.
func argmax(v []float32) int {
	idx := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[idx] {
			idx = i
		}
	}
	return idx
}

// DecodeBestPath performs greedy best-path CTC decoding: argmax per
// timestep, collapse of consecutive repeats, blank removal, then mapping
// through the charset. blank < 0 selects the last class index. An empty
// string is a valid outcome meaning "no text recognized".
//
// The second return value holds the per-character probabilities of the
// collapsed sequence.
func DecodeBestPath(p *Probs, charset *Charset, blank int) (string, []float64) {
	if blank < 0 {
		blank = p.C - 1
	}

	var sb strings.Builder
	charProbs := make([]float64, 0, p.T)
	prev := -1
	for t := range p.T {
		row := p.Row(t)
		idx := argmax(row)
		if idx == blank {
			prev = idx
			continue
		}
		if idx == prev {
			continue
		}
		sb.WriteString(charset.Token(idx))
		charProbs = append(charProbs, float64(row[idx]))
		prev = idx
	}
	return sb.String(), charProbs
}

// SequenceConfidence returns the mean of per-character probabilities, 0 if
// the sequence is empty.
func SequenceConfidence(charProbs []float64) float64 {
	if len(charProbs) == 0 {
		return 0
	}
	var s float64
	for _, p := range charProbs {
		s += p
	}
	return s / float64(len(charProbs))
}
