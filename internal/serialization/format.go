package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "RPRP"
	FormatVersion   = 1
	HeaderAlignment = 64
	FixedHeaderSize = 64
	ChecksumSize    = 32
	ChecksumOffset  = 0x20
	MaxHeaderSize   = 16 * 1024 * 1024
	MaxArrayCount   = 100_000
)

// Flags.
const (
	FlagHasOptimizer uint32 = 1 << 0 // optimizer state arrays included
)

// Header is the JSON header of a checkpoint.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Checkpoint    Meta              `json:"checkpoint"`
	Arrays        []ArrayMeta       `json:"arrays"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Meta describes the training state a checkpoint was taken at.
type Meta struct {
	Step      int     `json:"step"`
	Loss      float64 `json:"loss"`
	Optimizer string  `json:"optimizer"`
}

// ArrayMeta locates one array in the data section.
type ArrayMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

func padding(pos int64) int64 {
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}
