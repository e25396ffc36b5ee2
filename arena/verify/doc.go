// Package verify checks the structural invariants of an arena and its free
// registry.
//
// # Overview
//
// The allocator keeps two views of the same state: the chunk headers tiled
// through the arena bytes, and the sorted list of free chunk offsets. Every
// allocate or release must leave them agreeing. This package re-derives the
// byte-level view from scratch and compares:
//
//   - Tiling: walking from offset 0 by chunk size lands exactly on the end
//   - RegistryMirror: the registry holds exactly the free chunk offsets,
//     strictly ascending, no duplicates
//   - Conservation: allocated bytes plus free bytes equals the arena size
//   - Coalesced: no two free chunks are address-adjacent
//
// # Quick Start
//
//	if err := verify.AllInvariants(a, fa.FreeOffsets()); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	    }
//	}
//
// The checks never mutate the arena.
package verify
