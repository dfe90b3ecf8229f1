package tensor

import (
	"fmt"
	"unsafe"
)

// Device represents the compute device a tensor's memory lives on.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level tensor representation: a shape, a data type
// and an offset view into a reference-counted shared Buffer. A RawTensor
// without a holder is uninitialized; every data accessor requires an
// initialized tensor with enough holder memory behind it.
type RawTensor struct {
	holder *Buffer  // Shared reference-counted buffer, nil when uninitialized
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major)
	dtype  DataType // Runtime type information
	device Device   // Compute device
	offset int      // Byte offset into the holder for views
	lod    LoD      // Optional variable-length sequence info
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated but not initialized (contains zeros).
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	numElements := shape.NumElements()
	byteSize := numElements * dtype.Size()

	return &RawTensor{
		holder: NewBuffer(byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
		offset: 0,
	}, nil
}

// NewUninitialized creates a RawTensor with metadata but no holder.
// A holder must be attached via ResetHolder before the data is touched.
func NewUninitialized(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// SetDType changes the runtime type without touching the holder.
func (r *RawTensor) SetDType(dtype DataType) {
	r.dtype = dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the bytes needed by the tensor's elements.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Offset returns the byte offset of this view into its holder.
func (r *RawTensor) Offset() int {
	return r.offset
}

// SetOffset moves the view's byte offset within its holder.
func (r *RawTensor) SetOffset(offset int) {
	r.offset = offset
}

// IsInitialized reports whether the tensor has a memory holder attached.
func (r *RawTensor) IsInitialized() bool {
	return r.holder != nil
}

// MemorySize returns the bytes of holder memory behind this view, or 0
// for an uninitialized tensor.
func (r *RawTensor) MemorySize() int {
	if r.holder == nil {
		return 0
	}
	return r.holder.Len() - r.offset
}

// CheckMemorySize verifies that the holder carries enough memory for the
// tensor's shape and dtype.
func (r *RawTensor) CheckMemorySize() error {
	if r.holder == nil {
		return fmt.Errorf("tensor holds no memory: call one of the mutable-data paths first")
	}
	if r.ByteSize() > r.MemorySize() {
		return fmt.Errorf("tensor's dims are bigger than its memory: %d bytes needed, %d held",
			r.ByteSize(), r.MemorySize())
	}
	return nil
}

func (r *RawTensor) mustBeInitialized() {
	if err := r.CheckMemorySize(); err != nil {
		panic(err)
	}
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	r.mustBeInitialized()
	return r.holder.data[r.offset:]
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.Data() // Already []byte = []uint8
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Clone creates a shallow copy of the RawTensor that shares the holder
// via reference counting.
func (r *RawTensor) Clone() *RawTensor {
	if r.holder != nil {
		r.holder.addRef()
	}
	return &RawTensor{
		holder: r.holder,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset,
		lod:    r.lod.Clone(),
	}
}

// Release decrements the holder's reference count and deallocates it when
// no tensor references it anymore. Safe on uninitialized tensors.
func (r *RawTensor) Release() {
	if r.holder != nil {
		r.holder.release()
	}
}

// IsUnique returns true if this tensor is the only reference to the
// holder. When true, inplace modification is safe.
func (r *RawTensor) IsUnique() bool {
	return r.holder != nil && r.holder.isUnique()
}

// ForceNonUnique temporarily increases the holder's refcount to prevent
// inplace modifications. Returns a cleanup function that MUST be called to
// restore the refcount (use defer).
func (r *RawTensor) ForceNonUnique() func() {
	r.holder.addRef()
	return func() {
		r.holder.release()
	}
}
