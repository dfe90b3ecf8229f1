package tensor

import "fmt"

// Holder returns the tensor's shared buffer, or nil when uninitialized.
func (r *RawTensor) Holder() *Buffer {
	return r.holder
}

// IsSharedBufferWith reports whether both tensors are backed by the same
// holder.
func (r *RawTensor) IsSharedBufferWith(src *RawTensor) bool {
	return r.holder != nil && r.holder == src.holder
}

// ShareBufferWith makes this tensor use src's holder, dropping its own
// reference. Unless onlyBuffer is set, the view offset is shared as well;
// shape and dtype are never touched.
func (r *RawTensor) ShareBufferWith(src *RawTensor, onlyBuffer bool) {
	if r.holder == src.holder {
		if !onlyBuffer {
			r.offset = src.offset
		}
		return
	}
	if src.holder != nil {
		src.holder.addRef()
	}
	if r.holder != nil {
		r.holder.release()
	}
	r.holder = src.holder
	if !onlyBuffer {
		r.offset = src.offset
	}
}

// ShareDataWith makes this tensor a full alias of src: holder, shape,
// strides, dtype, device, offset and LoD. Returns the receiver.
func (r *RawTensor) ShareDataWith(src *RawTensor) *RawTensor {
	if r == src {
		return r
	}
	r.ShareBufferWith(src, false)
	r.shape = src.shape.Clone()
	r.stride = append([]int(nil), src.stride...)
	r.dtype = src.dtype
	r.device = src.device
	r.lod = src.lod.Clone()
	return r
}

// ShareDataTypeWith copies src's runtime data type only.
func (r *RawTensor) ShareDataTypeWith(src *RawTensor) {
	r.dtype = src.dtype
}

// ResetHolder replaces the tensor's holder. The new holder must carry
// enough memory for the tensor's current view.
func (r *RawTensor) ResetHolder(holder *Buffer) error {
	if holder == nil {
		return fmt.Errorf("cannot reset to a nil holder")
	}
	if r.offset+r.ByteSize() > holder.Len() {
		return fmt.Errorf("holder too small: %d bytes needed at offset %d, %d held",
			r.ByteSize(), r.offset, holder.Len())
	}
	holder.addRef()
	if r.holder != nil {
		r.holder.release()
	}
	r.holder = holder
	return nil
}

// ResetHolderWithType replaces the holder and the runtime type together.
func (r *RawTensor) ResetHolderWithType(holder *Buffer, dtype DataType) error {
	r.dtype = dtype
	return r.ResetHolder(holder)
}

// MoveMemoryHolder detaches and returns the holder, leaving the tensor
// uninitialized. The caller takes over the holder's reference.
func (r *RawTensor) MoveMemoryHolder() *Buffer {
	holder := r.holder
	r.holder = nil
	return holder
}

// Slice returns a view of rows [begin, end) along the first dimension,
// sharing the holder with the source tensor.
func (r *RawTensor) Slice(begin, end int) (*RawTensor, error) {
	if err := r.CheckMemorySize(); err != nil {
		return nil, err
	}
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot slice a scalar tensor")
	}
	if begin < 0 || end > r.shape[0] || begin >= end {
		return nil, fmt.Errorf("slice [%d, %d) out of range for dimension 0 of size %d",
			begin, end, r.shape[0])
	}

	view := r.Clone()
	view.shape[0] = end - begin
	view.offset = r.offset + begin*r.stride[0]*r.dtype.Size()
	view.lod = nil
	return view, nil
}

// Split partitions the tensor into views of splitSize rows each along the
// given axis. Only axis 0 produces contiguous views, so no other axis is
// supported. The last view may be smaller.
func (r *RawTensor) Split(splitSize, axis int) ([]*RawTensor, error) {
	if axis != 0 {
		return nil, fmt.Errorf("split supports axis 0 only, got %d", axis)
	}
	if splitSize <= 0 {
		return nil, fmt.Errorf("split size must be positive, got %d", splitSize)
	}
	if err := r.CheckMemorySize(); err != nil {
		return nil, err
	}
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot split a scalar tensor")
	}

	rows := r.shape[0]
	views := make([]*RawTensor, 0, (rows+splitSize-1)/splitSize)
	for begin := 0; begin < rows; begin += splitSize {
		end := min(begin+splitSize, rows)
		view, err := r.Slice(begin, end)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Chunk partitions the tensor into the given number of views along the
// given axis (axis 0 only), each of ceil(rows/chunks) rows.
func (r *RawTensor) Chunk(chunks, axis int) ([]*RawTensor, error) {
	if chunks <= 0 {
		return nil, fmt.Errorf("chunk count must be positive, got %d", chunks)
	}
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot chunk a scalar tensor")
	}
	splitSize := (r.shape[0] + chunks - 1) / chunks
	return r.Split(splitSize, axis)
}
