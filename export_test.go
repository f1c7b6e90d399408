package stowback

// HeldLocks reports how many paths currently have a lock entry.
func HeldLocks(l *PathLocker) int {
	return l.held()
}
