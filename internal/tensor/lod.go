package tensor

import "fmt"

// LoD (level of details) describes variable-length sequences packed into
// one tensor. Each level holds the cumulative offsets of its elements in
// the level below; the last level offsets index tensor rows directly.
type LoD [][]int

// Clone returns a deep copy of the LoD.
func (l LoD) Clone() LoD {
	if l == nil {
		return nil
	}
	clone := make(LoD, len(l))
	for i, level := range l {
		clone[i] = append([]int(nil), level...)
	}
	return clone
}

// NumLevels returns the number of LoD levels.
func (l LoD) NumLevels() int {
	return len(l)
}

// NumElements returns the number of elements in a level.
func (l LoD) NumElements(level int) int {
	if level < 0 || level >= len(l) || len(l[level]) == 0 {
		return 0
	}
	// Offset vectors carry one extra trailing entry.
	return len(l[level]) - 1
}

// LoD returns the tensor's sequence info.
func (r *RawTensor) LoD() LoD {
	return r.lod
}

// SetLoD attaches sequence info to the tensor.
func (r *RawTensor) SetLoD(lod LoD) {
	r.lod = lod
}

// NumLevels returns the number of LoD levels on the tensor.
func (r *RawTensor) NumLevels() int {
	return r.lod.NumLevels()
}

// NumLevelElements returns the number of elements at a LoD level.
func (r *RawTensor) NumLevelElements(level int) int {
	return r.lod.NumElements(level)
}

// LoDElement returns the start and end offset of one element of a LoD
// level.
func (r *RawTensor) LoDElement(level, elem int) (start, end int, err error) {
	if level < 0 || level >= r.lod.NumLevels() {
		return 0, 0, fmt.Errorf("lod level %d out of range [0, %d)", level, r.lod.NumLevels())
	}
	if elem < 0 || elem >= r.lod.NumElements(level) {
		return 0, 0, fmt.Errorf("lod element %d out of range [0, %d) at level %d",
			elem, r.lod.NumElements(level), level)
	}
	return r.lod[level][elem], r.lod[level][elem+1], nil
}
