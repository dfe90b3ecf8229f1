package tensor

import (
	"testing"
)

// Buffer sharing tests

func TestShareBufferWith(t *testing.T) {
	a, _ := NewRaw(Shape{2, 3}, Float32, CPU)
	b, _ := NewRaw(Shape{6}, Float32, CPU)

	a.AsFloat32()[0] = 42

	b.ShareBufferWith(a, false)

	if !b.IsSharedBufferWith(a) {
		t.Error("after ShareBufferWith, tensors should share the holder")
	}
	if b.AsFloat32()[0] != 42 {
		t.Error("shared holder should expose the same data")
	}
	// Shape and dtype are untouched.
	if !b.Shape().Equal(Shape{6}) {
		t.Errorf("ShareBufferWith must not change shape, got %v", b.Shape())
	}

	// Writes through one view are visible in the other.
	b.AsFloat32()[1] = 7
	if a.AsFloat32()[1] != 7 {
		t.Error("write through shared holder not visible in source tensor")
	}
}

func TestShareBufferWithOnlyBuffer(t *testing.T) {
	a, _ := NewRaw(Shape{4}, Float32, CPU)
	view, err := a.Slice(2, 4)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	b, _ := NewRaw(Shape{2}, Float32, CPU)
	b.SetOffset(0)
	b.ShareBufferWith(view, true)

	if b.Offset() != 0 {
		t.Errorf("onlyBuffer share must keep offset, got %d", b.Offset())
	}

	c, _ := NewRaw(Shape{2}, Float32, CPU)
	c.ShareBufferWith(view, false)
	if c.Offset() != view.Offset() {
		t.Errorf("full share must copy offset: got %d, want %d", c.Offset(), view.Offset())
	}
}

func TestShareDataWith(t *testing.T) {
	src, _ := NewRaw(Shape{3, 2}, Int64, CUDA)
	src.SetLoD(LoD{{0, 1, 3}})
	src.AsInt64()[0] = 9

	dst, _ := NewRaw(Shape{5}, Float32, CPU)
	dst.ShareDataWith(src)

	if !dst.IsSharedBufferWith(src) {
		t.Error("ShareDataWith should share the holder")
	}
	if !dst.Shape().Equal(src.Shape()) {
		t.Errorf("ShareDataWith shape = %v, want %v", dst.Shape(), src.Shape())
	}
	if dst.DType() != Int64 || dst.Device() != CUDA {
		t.Error("ShareDataWith should copy dtype and device")
	}
	if dst.NumLevels() != 1 {
		t.Error("ShareDataWith should copy LoD")
	}
	if dst.AsInt64()[0] != 9 {
		t.Error("ShareDataWith should expose source data")
	}
}

func TestShareDataTypeWith(t *testing.T) {
	src, _ := NewRaw(Shape{2}, Float64, CPU)
	dst, _ := NewRaw(Shape{2}, Float32, CPU)

	dst.ShareDataTypeWith(src)
	if dst.DType() != Float64 {
		t.Errorf("DType = %v, want float64", dst.DType())
	}
	if dst.IsSharedBufferWith(src) {
		t.Error("ShareDataTypeWith must not share the holder")
	}
}

// Holder manipulation tests

func TestHolderAndResetHolder(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32, CPU)
	if raw.Holder() == nil {
		t.Fatal("new tensor should have a holder")
	}

	big := NewBuffer(64)
	if err := raw.ResetHolder(big); err != nil {
		t.Fatalf("ResetHolder failed: %v", err)
	}
	if raw.Holder() != big {
		t.Error("ResetHolder should attach the new holder")
	}
	if raw.MemorySize() != 64 {
		t.Errorf("MemorySize = %d, want 64", raw.MemorySize())
	}

	small := NewBuffer(4)
	if err := raw.ResetHolder(small); err == nil {
		t.Error("ResetHolder with a too-small holder should fail")
	}
}

func TestResetHolderWithType(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)

	holder := NewBuffer(32)
	if err := raw.ResetHolderWithType(holder, Int64); err != nil {
		t.Fatalf("ResetHolderWithType failed: %v", err)
	}
	if raw.DType() != Int64 {
		t.Errorf("DType = %v, want int64", raw.DType())
	}
}

func TestMoveMemoryHolder(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32, CPU)

	holder := raw.MoveMemoryHolder()
	if holder == nil {
		t.Fatal("MoveMemoryHolder should return the holder")
	}
	if raw.IsInitialized() {
		t.Error("tensor should be uninitialized after MoveMemoryHolder")
	}
	if raw.MemorySize() != 0 {
		t.Errorf("MemorySize = %d, want 0 for uninitialized tensor", raw.MemorySize())
	}
	if err := raw.CheckMemorySize(); err == nil {
		t.Error("CheckMemorySize should fail on an uninitialized tensor")
	}
}

func TestNewUninitialized(t *testing.T) {
	raw, err := NewUninitialized(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewUninitialized failed: %v", err)
	}
	if raw.IsInitialized() {
		t.Error("NewUninitialized tensor should report uninitialized")
	}

	if err := raw.ResetHolder(NewBuffer(raw.ByteSize())); err != nil {
		t.Fatalf("ResetHolder failed: %v", err)
	}
	if !raw.IsInitialized() {
		t.Error("tensor should be initialized after ResetHolder")
	}
	if err := raw.CheckMemorySize(); err != nil {
		t.Errorf("CheckMemorySize failed: %v", err)
	}
}

// Slice / Split / Chunk tests

func TestSliceSharesHolder(t *testing.T) {
	raw, _ := NewRaw(Shape{4, 3}, Float32, CPU)
	data := raw.AsFloat32()
	for i := range data {
		data[i] = float32(i)
	}

	view, err := raw.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if !view.IsSharedBufferWith(raw) {
		t.Error("slice should share the holder")
	}
	if !view.Shape().Equal(Shape{2, 3}) {
		t.Errorf("slice shape = %v, want [2 3]", view.Shape())
	}
	if view.Offset() != 3*4 {
		t.Errorf("slice offset = %d, want 12", view.Offset())
	}
	if got := view.AsFloat32()[0]; got != 3 {
		t.Errorf("slice data[0] = %v, want 3", got)
	}

	// Slices are views: writes show through.
	view.AsFloat32()[0] = -1
	if raw.AsFloat32()[3] != -1 {
		t.Error("write through slice not visible in source")
	}
}

func TestSliceOutOfRange(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)

	for _, bounds := range [][2]int{{-1, 2}, {0, 5}, {2, 2}, {3, 1}} {
		if _, err := raw.Slice(bounds[0], bounds[1]); err == nil {
			t.Errorf("Slice(%d, %d) should fail", bounds[0], bounds[1])
		}
	}
}

func TestSplit(t *testing.T) {
	raw, _ := NewRaw(Shape{5, 2}, Float32, CPU)

	views, err := raw.Split(2, 0)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("Split returned %d views, want 3", len(views))
	}
	wantRows := []int{2, 2, 1}
	for i, v := range views {
		if v.Shape()[0] != wantRows[i] {
			t.Errorf("view %d rows = %d, want %d", i, v.Shape()[0], wantRows[i])
		}
		if !v.IsSharedBufferWith(raw) {
			t.Errorf("view %d should share the holder", i)
		}
	}

	if _, err := raw.Split(2, 1); err == nil {
		t.Error("Split on axis != 0 should fail")
	}
	if _, err := raw.Split(0, 0); err == nil {
		t.Error("Split with non-positive size should fail")
	}
}

func TestChunk(t *testing.T) {
	raw, _ := NewRaw(Shape{6, 2}, Float32, CPU)

	views, err := raw.Chunk(4, 0)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("Chunk returned %d views, want 3 (ceil-sized chunks)", len(views))
	}
	if views[0].Shape()[0] != 2 {
		t.Errorf("chunk rows = %d, want 2", views[0].Shape()[0])
	}

	if _, err := raw.Chunk(0, 0); err == nil {
		t.Error("Chunk with non-positive count should fail")
	}
}
