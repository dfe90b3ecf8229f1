// Copyright 2026 Lotus ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the low-level tensor representation of the
// Lotus ML framework.
//
// # Overview
//
// A RawTensor couples shape, stride and runtime type metadata with a
// reference-counted memory holder (Buffer). Holders can be shared
// between tensors, so views, slices and aliases never copy data:
//   - Shape and type information via Shape(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Buffer sharing via ShareBufferWith(), ShareDataWith(), Clone()
//   - Holder manipulation via Holder(), ResetHolder(), MoveMemoryHolder()
//   - Row views via Slice(), Split(), Chunk()
//   - Variable-length sequence info via LoD
//
// # Basic Usage
//
//	import "github.com/lotus-ml/lotus/tensor"
//
//	func main() {
//	    x, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	    y, _ := tensor.NewRaw(tensor.Shape{6}, tensor.Float32, tensor.CPU)
//
//	    y.ShareBufferWith(x, false) // both views now read the same memory
//	    rows, _ := x.Slice(0, 1)    // zero-copy row view
//	    _ = rows
//	}
//
// # Supported Data Types
//
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for images)
//   - bool (boolean masks)
//
// # Memory Management
//
// Holders are reference-counted: Clone and the sharing operations bump
// the count, Release drops it, and the memory is freed when the last
// reference goes away. Device-side allocations are accounted separately
// by the device package's recorded allocator.
package tensor
