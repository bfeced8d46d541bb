package surfpool

import "fmt"

// SurfaceId identifies a hardware decoder surface allocated by the video acceleration driver. The pool never creates or
// destroys surfaces, it only moves ownership of already-allocated ids between its free and in-use sets.
//
type SurfaceId uint32

const InvalidSurface = SurfaceId(0xffffffff)

func (self SurfaceId) String() string {
	if self == InvalidSurface {
		return "invalid"
	}
	return fmt.Sprintf("%d", uint32(self))
}

type Display interface{}

type FrameStructure uint32

const (
	FramePicture FrameStructure = 0x00
	TopField     FrameStructure = 0x01
	BottomField  FrameStructure = 0x02
)

func (self FrameStructure) String() string {
	switch self {
	case FramePicture:
		return "picture"
	case TopField:
		return "top"
	case BottomField:
		return "bottom"
	default:
		return fmt.Sprintf("structure(%d)", uint32(self))
	}
}

type FrameType int

const (
	FrameTypeInvalid FrameType = iota - 1
	FrameTypeI
	FrameTypeP
	FrameTypeB
)

func (self FrameType) String() string {
	switch self {
	case FrameTypeI:
		return "I"
	case FrameTypeP:
		return "P"
	case FrameTypeB:
		return "B"
	default:
		return "invalid"
	}
}
