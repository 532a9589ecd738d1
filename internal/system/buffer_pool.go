package system

import (
	"image"
	"sync"
)

// BufferPool recycles pixel buffers to take load off the garbage
// collector when many images of the same size are rendered.
type BufferPool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

func NewBufferPool() *BufferPool {
	return &BufferPool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// Get returns a buffer covering rect, taken from the pool when one of that
// size is available. Its contents are undefined.
func (p *BufferPool) Get(rect image.Rectangle) *image.NRGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return image.NewNRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.NRGBA)
}

// Put hands buf back for reuse. The caller must not touch it afterwards.
func (p *BufferPool) Put(buf *image.NRGBA) {
	if buf == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[buf.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(buf)
	}
}
