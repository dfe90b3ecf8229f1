package tensor

import "testing"

func TestLoDAccessors(t *testing.T) {
	raw, _ := NewRaw(Shape{6, 2}, Float32, CPU)

	if raw.NumLevels() != 0 {
		t.Errorf("NumLevels = %d, want 0 before SetLoD", raw.NumLevels())
	}

	// Two sequences of 2 and 4 rows.
	raw.SetLoD(LoD{{0, 2, 6}})

	if raw.NumLevels() != 1 {
		t.Errorf("NumLevels = %d, want 1", raw.NumLevels())
	}
	if raw.NumLevelElements(0) != 2 {
		t.Errorf("NumLevelElements(0) = %d, want 2", raw.NumLevelElements(0))
	}

	start, end, err := raw.LoDElement(0, 1)
	if err != nil {
		t.Fatalf("LoDElement failed: %v", err)
	}
	if start != 2 || end != 6 {
		t.Errorf("LoDElement(0, 1) = (%d, %d), want (2, 6)", start, end)
	}
}

func TestLoDElementOutOfRange(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)
	raw.SetLoD(LoD{{0, 4}})

	if _, _, err := raw.LoDElement(1, 0); err == nil {
		t.Error("LoDElement with bad level should fail")
	}
	if _, _, err := raw.LoDElement(0, 1); err == nil {
		t.Error("LoDElement with bad element should fail")
	}
	if _, _, err := raw.LoDElement(0, -1); err == nil {
		t.Error("LoDElement with negative element should fail")
	}
}

func TestLoDClone(t *testing.T) {
	lod := LoD{{0, 1, 3}, {0, 2, 4, 6}}
	clone := lod.Clone()

	clone[0][1] = 99
	if lod[0][1] != 1 {
		t.Error("Clone must deep-copy levels")
	}

	if LoD(nil).Clone() != nil {
		t.Error("Clone of nil LoD should be nil")
	}

	if lod.NumElements(5) != 0 {
		t.Error("NumElements of missing level should be 0")
	}
}

func TestCloneCarriesLoD(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)
	raw.SetLoD(LoD{{0, 2, 4}})

	clone := raw.Clone()
	if clone.NumLevels() != 1 || clone.NumLevelElements(0) != 2 {
		t.Error("Clone should carry the LoD")
	}
}
