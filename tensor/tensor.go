// Copyright 2026 Lotus ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the Lotus tensor
// representation: shapes, runtime data types, and buffer sharing.
package tensor

import (
	"github.com/lotus-ml/lotus/internal/tensor"
)

// Type aliases for public API

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Buffer is the reference-counted memory holder shared between tensors.
type Buffer = tensor.Buffer

// LoD describes variable-length sequences packed into one tensor.
type LoD = tensor.LoD

// NewBuffer creates a reference-counted buffer of the given byte size.
func NewBuffer(size int) *Buffer {
	return tensor.NewBuffer(size)
}

// NewRaw creates a RawTensor with freshly allocated, zeroed memory.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// NewUninitialized creates a RawTensor without a memory holder; attach
// one via ResetHolder before touching the data.
func NewUninitialized(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewUninitialized(shape, dtype, device)
}
