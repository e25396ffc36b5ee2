package format

// Align4 returns n rounded up to the next multiple of Alignment.
//
// Example:
//
//	Align4(1) = 4
//	Align4(4) = 4
//	Align4(5) = 8
func Align4(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// IsAligned reports whether n is a multiple of Alignment.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}

// ArenaSize clamps a requested arena size up to MinArenaSize and rounds it
// to Alignment.
func ArenaSize(requested int) int {
	if requested < MinArenaSize {
		requested = MinArenaSize
	}
	return Align4(requested)
}

// RegistryCapacity is the most chunks an arena of size bytes can ever be
// split into, since every chunk is at least MinChunkSize bytes.
func RegistryCapacity(size int) int {
	return size / MinChunkSize
}
