package music

// trackQueue is not safe for concurrent use; the owning Player guards it.
type trackQueue struct {
	items []Track
	limit int
}

func newTrackQueue(limit int) *trackQueue {
	return &trackQueue{limit: limit}
}

// Push returns the 1-based position of the appended track.
func (q *trackQueue) Push(t Track) (int, error) {
	if q.limit > 0 && len(q.items) >= q.limit {
		return 0, ErrQueueFull
	}
	q.items = append(q.items, t)
	return len(q.items), nil
}

func (q *trackQueue) Pop() (Track, bool) {
	if len(q.items) == 0 {
		return Track{}, false
	}
	head := q.items[0]
	q.items[0] = Track{}
	q.items = q.items[1:]
	return head, true
}

func (q *trackQueue) Remove(index int) (Track, error) {
	if index < 1 || index > len(q.items) {
		return Track{}, ErrIndexOutOfRange
	}
	removed := q.items[index-1]
	q.items = append(q.items[:index-1], q.items[index:]...)
	return removed, nil
}

func (q *trackQueue) Clear() int {
	n := len(q.items)
	q.items = nil
	return n
}

func (q *trackQueue) Len() int {
	return len(q.items)
}

func (q *trackQueue) List() []Track {
	out := make([]Track, len(q.items))
	copy(out, q.items)
	return out
}
