package alloc

import (
	"io"
	"sync"
)

// SyncAllocator serializes every operation on a BestFit behind one mutex.
//
// Payload slices returned by Alloc are not protected; callers must not touch
// a payload after freeing it.
type SyncAllocator struct {
	mu sync.Mutex
	fa *BestFit
}

// NewSync wraps fa. fa must not be used directly afterwards.
func NewSync(fa *BestFit) *SyncAllocator {
	return &SyncAllocator{fa: fa}
}

func (s *SyncAllocator) Alloc(n int) (Ref, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fa.Alloc(n)
}

func (s *SyncAllocator) Free(ref Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fa.Free(ref)
}

func (s *SyncAllocator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fa.Close()
}

// Stats returns a snapshot taken under the lock.
func (s *SyncAllocator) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fa.Stats()
}

// Verify runs the invariant checks under the lock.
func (s *SyncAllocator) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fa.Verify()
}

// Dump writes the chunk listing under the lock.
func (s *SyncAllocator) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fa.Dump(w)
}
