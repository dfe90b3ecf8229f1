// Copyright 2026 Lotus ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/lotus-ml/lotus/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Buffer sharing via ShareBufferWith(), ShareDataWith(), Clone()
//   - Holder manipulation via Holder(), ResetHolder(), MoveMemoryHolder()
//   - Reference counting for efficient memory management
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()  // Type-safe access
//	clone := raw.Clone()     // Shares holder via reference counting
type RawTensor = tensor.RawTensor
