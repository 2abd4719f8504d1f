// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

// TexUsage is a mask of ways a texture dependency can be used.
// It partitions into read and write subsets (texRead, texWrite); a
// bit that names a layout-only concern (TexPresent) is in neither.
type TexUsage uint32

// Texture usage bits.
const (
	TexSampled TexUsage = 1 << iota
	TexUAVRead
	TexUAVWrite
	TexFramebufRead
	TexFramebufWrite
	TexTransferSrc
	TexTransferDst
	TexMipGen
	TexPresent
	TexShadingRate
)

// texRead is the subset of TexUsage bits that constitute a read.
const texRead = TexSampled | TexUAVRead | TexFramebufRead | TexTransferSrc | TexShadingRate

// texWrite is the subset of TexUsage bits that constitute a write.
const texWrite = TexUAVWrite | TexFramebufWrite | TexTransferDst | TexMipGen

// IsRead reports whether u has any read bit set.
func (u TexUsage) IsRead() bool { return u&texRead != 0 }

// IsWrite reports whether u has any write bit set.
func (u TexUsage) IsWrite() bool { return u&texWrite != 0 }

// BufUsage is a mask of ways a buffer dependency can be used.
type BufUsage uint32

// Buffer usage bits.
const (
	BufShaderRead BufUsage = 1 << iota
	BufShaderWrite
	BufConstantRead
	BufVertexRead
	BufIndexRead
	BufTransferSrc
	BufTransferDst
	BufIndirectRead
)

const bufRead = BufShaderRead | BufConstantRead | BufVertexRead | BufIndexRead | BufTransferSrc | BufIndirectRead
const bufWrite = BufShaderWrite | BufTransferDst

func (u BufUsage) IsRead() bool  { return u&bufRead != 0 }
func (u BufUsage) IsWrite() bool { return u&bufWrite != 0 }

// ASUsage is a mask of ways an acceleration-structure dependency can
// be used.
type ASUsage uint32

// Acceleration-structure usage bits.
const (
	ASBuildRead ASUsage = 1 << iota
	ASBuildWrite
	ASTraceRead
)

const asRead = ASBuildRead | ASTraceRead
const asWrite = ASBuildWrite

func (u ASUsage) IsRead() bool  { return u&asRead != 0 }
func (u ASUsage) IsWrite() bool { return u&asWrite != 0 }

// conflicts implements the shared read/write conflict test of
// spec.md §4.3: (read_i & write_j) | (write_i & read_j) | (write_i & write_j).
func conflicts(readI, writeI, readJ, writeJ bool) bool {
	return (readI && writeJ) || (writeI && readJ) || (writeI && writeJ)
}
