// Package mempool provides sized buffer pools for hot paths that repeatedly
// allocate large float32 tensors and bool masks.
package mempool

import "sync"

const step = 1024

var (
	float32Pools sync.Map // size class -> *sync.Pool of []float32
	boolPools    sync.Map // size class -> *sync.Pool of []bool
)

// sizeClass rounds n up to the next multiple of step so buffers of similar
// sizes share a pool.
func sizeClass(n int) int {
	if n <= step {
		return step
	}
	return ((n + step - 1) / step) * step
}

// GetFloat32 retrieves a []float32 buffer of length n from the pool. The
// contents are unspecified. Return it via PutFloat32 when done.
func GetFloat32(n int) []float32 {
	cls := sizeClass(n)
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	p := pAny.(*sync.Pool)
	buf := p.Get().([]float32)
	if cap(buf) < n {
		buf = make([]float32, cls)
	}
	return buf[:n]
}

// PutFloat32 returns a buffer to the pool. Nil slices are ignored.
func PutFloat32(buf []float32) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	pAny.(*sync.Pool).Put(buf[:cap(buf)]) //nolint:staticcheck // slice header churn is acceptable here
}

// GetBool retrieves a []bool buffer of length n with all elements false.
// Return it via PutBool when done.
func GetBool(n int) []bool {
	cls := sizeClass(n)
	pAny, _ := boolPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]bool, cls) }})
	p := pAny.(*sync.Pool)
	buf := p.Get().([]bool)
	if cap(buf) < n {
		buf = make([]bool, cls)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = false
	}
	return buf
}

// PutBool returns a buffer to the pool. Nil slices are ignored.
func PutBool(buf []bool) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := boolPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]bool, cls) }})
	pAny.(*sync.Pool).Put(buf[:cap(buf)]) //nolint:staticcheck // slice header churn is acceptable here
}
