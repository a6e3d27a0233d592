package batch

// Split partitions items into contiguous batches of at most size
// elements. The last batch may be short. Order is preserved and every
// item lands in exactly one batch. size values below 1 are treated
// as 1.
func Split(items []Item, size int) [][]Item {
	if size < 1 {
		size = 1
	}
	if len(items) == 0 {
		return nil
	}
	out := make([][]Item, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
