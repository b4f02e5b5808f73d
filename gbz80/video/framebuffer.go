package video

type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor         = 0xFF989898
	DarkGreyColor          = 0xFF4C4C4C
	BlackColor             = 0xFF000000
)

type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer at the standard Game Boy
// resolution (FramebufferWidth x FramebufferHeight).
func NewFrameBuffer() *FrameBuffer {
	width, height := uint(FramebufferWidth), uint(FramebufferHeight)
	return &FrameBuffer{
		width:  width,
		height: height,
		buffer: make([]uint32, width*height),
	}
}

func (fb FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// ToGrayscale renders the buffer as one 8-bit grayscale sample per pixel,
// for test harnesses that hash or diff frames against a golden reference
// without caring about exact RGBA packing.
func (fb *FrameBuffer) ToGrayscale() []byte {
	out := make([]byte, len(fb.buffer))
	for i, pixel := range fb.buffer {
		switch GBColor(pixel) {
		case WhiteColor:
			out[i] = 0xFF
		case LightGreyColor:
			out[i] = 0xA8
		case DarkGreyColor:
			out[i] = 0x54
		default:
			out[i] = 0x00
		}
	}
	return out
}
