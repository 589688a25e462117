package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Mat owns a gocv.Mat and releases it exactly once, either through Close or
// from a finalizer when the caller forgets.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
	id      uint64
}

var nextMatID uint64

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	if err := ValidateDimensions(cols, rows, "NewMat"); err != nil {
		return nil, err
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat), nil
}

// NewEmpty returns a valid wrapper around an empty Mat, suitable as the
// destination of an OpenCV call.
func NewEmpty() *Mat {
	return wrap(gocv.NewMat())
}

// NewMatFromBytes copies data into a new 8-bit Mat of the given channel
// count.
func NewMatFromBytes(rows, cols, channels int, data []byte) (*Mat, error) {
	if err := ValidateDimensions(cols, rows, "NewMatFromBytes"); err != nil {
		return nil, err
	}
	matType, err := byteMatType(channels)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols*channels {
		return nil, fmt.Errorf("got %d bytes for %dx%dx%d Mat", len(data), cols, rows, channels)
	}

	mat, err := gocv.NewMatFromBytes(rows, cols, matType, data)
	if err != nil {
		return nil, fmt.Errorf("create Mat from bytes: %w", err)
	}

	// NewMatFromBytes may alias data; clone so the Mat owns its pixels.
	owned := mat.Clone()
	mat.Close()
	if owned.Empty() {
		owned.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return wrap(owned), nil
}

// Adopt takes ownership of mat without cloning it.
func Adopt(mat gocv.Mat) (*Mat, error) {
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("source Mat is empty")
	}
	return wrap(mat), nil
}

func wrap(mat gocv.Mat) *Mat {
	sm := &Mat{
		mat:     mat,
		isValid: 1,
		id:      atomic.AddUint64(&nextMatID, 1),
	}
	runtime.SetFinalizer(sm, (*Mat).finalize)
	return sm
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}
	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}
	return sm.mat.Type()
}

func (sm *Mat) Clone() (*Mat, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}
	if sm.mat.Empty() {
		return nil, fmt.Errorf("cannot clone empty Mat")
	}
	return Adopt(sm.mat.Clone())
}

// Bytes returns a copy of the Mat's pixel data.
func (sm *Mat) Bytes() ([]byte, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("Mat is invalid")
	}
	if !sm.mat.IsContinuous() {
		return nil, fmt.Errorf("Mat %d is not continuous", sm.id)
	}

	data := sm.mat.ToBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// GetMat exposes the underlying Mat for OpenCV calls. The caller must not
// close it.
func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

// Ptr exposes the underlying Mat as an OpenCV destination.
func (sm *Mat) Ptr() *gocv.Mat {
	return &sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		sm.mat.Close()
		runtime.SetFinalizer(sm, nil)
	}
}

func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}

func byteMatType(channels int) (gocv.MatType, error) {
	switch channels {
	case 1:
		return gocv.MatTypeCV8UC1, nil
	case 3:
		return gocv.MatTypeCV8UC3, nil
	case 4:
		return gocv.MatTypeCV8UC4, nil
	default:
		return gocv.MatTypeCV8UC1, fmt.Errorf("unsupported channel count %d", channels)
	}
}
