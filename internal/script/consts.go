package script

const (
	// CommentPrefix starts a comment; the rest of the line is ignored.
	CommentPrefix = "#"

	// ScannerMaxLineSize bounds a single script line.
	ScannerMaxLineSize = 64 * 1024
)

// Op is a script command verb.
type Op string

const (
	OpInit   Op = "init"   // init <size>
	OpAlloc  Op = "alloc"  // alloc <name> <bytes>
	OpFree   Op = "free"   // free <name>
	OpDump   Op = "dump"   // dump
	OpStats  Op = "stats"  // stats
	OpVerify Op = "verify" // verify
	OpOffset Op = "offset" // offset <name>
)

// arity is the number of arguments each verb takes.
var arity = map[Op]int{
	OpInit:   1,
	OpAlloc:  2,
	OpFree:   1,
	OpDump:   0,
	OpStats:  0,
	OpVerify: 0,
	OpOffset: 1,
}
