package domain

// QueueItem is a song waiting to be played.
type QueueItem struct {
	VideoID    string `json:"videoId"`
	Title      string `json:"title"`
	Thumbnail  string `json:"thumbnail"`
	Duration   string `json:"duration"`
	AuthorName string `json:"authorName"`
}

// CloneQueue never returns nil so an empty queue encodes as [].
func CloneQueue(q []QueueItem) []QueueItem {
	out := make([]QueueItem, len(q))
	copy(out, q)
	return out
}

// IsPermutation reports whether next holds exactly the videos of cur,
// in any order, with the same multiplicity.
func IsPermutation(cur, next []QueueItem) bool {
	if len(cur) != len(next) {
		return false
	}
	seen := make(map[string]int, len(cur))
	for _, it := range cur {
		seen[it.VideoID]++
	}
	for _, it := range next {
		if seen[it.VideoID] == 0 {
			return false
		}
		seen[it.VideoID]--
	}
	return true
}
