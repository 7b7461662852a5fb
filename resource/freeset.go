package resource

import "container/heap"

// handleHeap is a min-heap of handles.
type handleHeap []Handle

func (q handleHeap) Len() int           { return len(q) }
func (q handleHeap) Less(i, j int) bool { return q[i] < q[j] }
func (q handleHeap) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *handleHeap) Push(x any) { *q = append(*q, x.(Handle)) }

func (q *handleHeap) Pop() any {
	old := *q
	n := len(old)
	h := old[n-1]
	*q = old[:n-1]
	return h
}

// freeSet holds retired handles below a registry's high-water mark.
// member is authoritative; heap entries whose member bit is clear were
// claimed and are skipped when they surface.
type freeSet struct {
	heap   handleHeap
	member []bool
	n      int
}

func (f *freeSet) len() int { return f.n }

func (f *freeSet) put(h Handle) {
	for int(h) >= len(f.member) {
		f.member = append(f.member, false)
	}
	if f.member[h] {
		return
	}
	f.member[h] = true
	f.n++
	heap.Push(&f.heap, h)
}

// take removes and returns the smallest retired handle.
func (f *freeSet) take() (Handle, bool) {
	for len(f.heap) > 0 {
		h := heap.Pop(&f.heap).(Handle)
		if f.member[h] {
			f.member[h] = false
			f.n--
			return h, true
		}
	}
	return 0, false
}

// claim removes h from the set if present.
func (f *freeSet) claim(h Handle) bool {
	if int(h) >= len(f.member) || !f.member[h] {
		return false
	}
	f.member[h] = false
	f.n--
	if f.n == 0 {
		f.heap = f.heap[:0]
	}
	return true
}

func (f *freeSet) reset() {
	f.heap = f.heap[:0]
	f.member = f.member[:0]
	f.n = 0
}

// allocator hands out the smallest handle that is not live.
// Live handles are exactly [0, next) minus the free set.
type allocator struct {
	free freeSet
	next Handle
}

func (a *allocator) alloc() Handle {
	if h, ok := a.free.take(); ok {
		return h
	}
	h := a.next
	a.next++
	return h
}

func (a *allocator) release(h Handle) {
	if h+1 == a.next {
		a.next--
		a.trim()
		return
	}
	a.free.put(h)
}

// trim lowers the high-water mark past retired handles at the top.
func (a *allocator) trim() {
	for a.next > 0 && a.free.claim(a.next-1) {
		a.next--
	}
}

// reserve marks a specific handle live. It reports false if h is already live.
// MaxHandle itself is never handed out.
func (a *allocator) reserve(h Handle) bool {
	if h == MaxHandle {
		return false
	}
	if h >= a.next {
		for x := a.next; x < h; x++ {
			a.free.put(x)
		}
		a.next = h + 1
		return true
	}
	return a.free.claim(h)
}

func (a *allocator) reset() {
	a.free.reset()
	a.next = 0
}
