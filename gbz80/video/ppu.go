package video

import (
	"github.com/arjunrg/gbz80/gbz80/addr"
	"github.com/arjunrg/gbz80/gbz80/bit"
)

// ppu.go implements the LCD controller's per-scanline mode timing and pixel
// rendering, grounded on the teacher's video/gpu.go state machine (same
// four-mode OAM/VRAM/HBlank/VBlank cycle budget per scanline) generalized
// to: drive STAT's mode bits and LYC coincidence bit instead of leaving
// them as TODOs, fire the STAT interrupt on the four selectable sources
// (not just VBlank), and render full background/window/sprite scanlines
// via the teacher's still-good OAM/Tile helpers instead of the 32x32
// whole-frame tile dump gpu.go's drawTile did once per HBlank entry.

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// Mode is one of the four PPU modes reported in STAT bits 0-1.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeDraw
)

const (
	oamScanCycles  = 80
	drawCycles     = 172
	hblankCycles   = 204
	scanlineCycles = oamScanCycles + drawCycles + hblankCycles // 456
	visibleLines   = 144
	totalLines     = 154
)

// Bus is the interface PPU needs for memory access and interrupt delivery.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	RequestInterrupt(interrupt addr.Interrupt)
}

// PPU drives the LCD controller's mode timing and renders scanlines into a
// FrameBuffer as the beam reaches HBlank for that line.
type PPU struct {
	bus Bus
	oam *OAM

	framebuffer *FrameBuffer
	layers      *RenderLayers

	mode   Mode
	cycles int
	frames uint64

	statLine bool // previous value of the STAT interrupt line, for edge detection
}

func NewPPU(bus Bus) *PPU {
	return &PPU{
		bus:         bus,
		oam:         NewOAM(bus),
		framebuffer: NewFrameBuffer(),
		layers:      NewRenderLayers(),
		mode:        ModeOAMScan,
	}
}

// Framebuffer returns the frame currently being (or last) rendered.
func (p *PPU) Framebuffer() *FrameBuffer {
	return p.framebuffer
}

// Layers returns the debug per-layer framebuffers; callers decide whether
// to populate/display them (see RenderLayers.Enabled).
func (p *PPU) Layers() *RenderLayers {
	return p.layers
}

// FrameCount returns the number of frames fully rendered so far (the
// number of times the beam has entered VBlank). Machine.RunUntilVBlank
// polls this to detect when a new frame is ready.
func (p *PPU) FrameCount() uint64 {
	return p.frames
}

// Tick advances the PPU state machine by the given number of T-states.
func (p *PPU) Tick(cycles int) {
	if !p.lcdEnabled() {
		return
	}

	p.cycles += cycles

	for {
		advanced := p.step()
		if !advanced {
			break
		}
	}

	p.updateStatInterrupt()
}

func (p *PPU) lcdEnabled() bool {
	return bit.IsSet(7, p.bus.Read(addr.LCDC))
}

// step consumes one mode's worth of cycles if enough have accumulated,
// returning true if a transition happened (so Tick can drain multiple
// mode transitions accrued from one large Tick call).
func (p *PPU) step() bool {
	switch p.mode {
	case ModeOAMScan:
		if p.cycles < oamScanCycles {
			return false
		}
		p.cycles -= oamScanCycles
		p.mode = ModeDraw

	case ModeDraw:
		if p.cycles < drawCycles {
			return false
		}
		p.cycles -= drawCycles
		p.renderScanline(p.currentLine())
		p.mode = ModeHBlank

	case ModeHBlank:
		if p.cycles < hblankCycles {
			return false
		}
		p.cycles -= hblankCycles
		p.advanceLine()

	case ModeVBlank:
		if p.cycles < scanlineCycles {
			return false
		}
		p.cycles -= scanlineCycles
		p.advanceLine()
	}

	return true
}

func (p *PPU) currentLine() int {
	return int(p.bus.Read(addr.LY))
}

func (p *PPU) setLine(line int) {
	p.bus.Write(addr.LY, uint8(line))
}

func (p *PPU) advanceLine() {
	line := p.currentLine() + 1

	if p.mode == ModeVBlank {
		if line >= totalLines {
			line = 0
			p.mode = ModeOAMScan
		}
	} else if line >= visibleLines {
		p.mode = ModeVBlank
		p.frames++
		p.bus.RequestInterrupt(addr.VBlankInterrupt)
	} else {
		p.mode = ModeOAMScan
	}

	p.setLine(line)
}

// updateStatInterrupt recomputes STAT's mode bits and coincidence flag and
// fires the STAT interrupt on a 0-to-1 transition of the OR of its four
// selectable sources, per documented STAT-blocking behavior.
func (p *PPU) updateStatInterrupt() {
	stat := p.bus.Read(addr.STAT)
	stat = stat&0xF8 | uint8(p.mode)

	lyMatches := p.currentLine() == int(p.bus.Read(addr.LYC))
	stat = setBit(stat, 2, lyMatches)
	p.bus.Write(addr.STAT, stat)

	line := (lyMatches && bit.IsSet(6, stat)) ||
		(p.mode == ModeOAMScan && bit.IsSet(5, stat)) ||
		(p.mode == ModeVBlank && bit.IsSet(4, stat)) ||
		(p.mode == ModeHBlank && bit.IsSet(3, stat))

	if line && !p.statLine {
		p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	p.statLine = line
}

func setBit(value uint8, index uint8, set bool) uint8 {
	if set {
		return bit.Set(index, value)
	}
	return bit.Clear(index, value)
}

// renderScanline draws background, window and sprites for one line into
// the framebuffer.
func (p *PPU) renderScanline(line int) {
	if line < 0 || line >= FramebufferHeight {
		return
	}

	lcdc := p.bus.Read(addr.LCDC)

	if bit.IsSet(0, lcdc) {
		p.renderBackgroundLine(line, lcdc)
	} else {
		for x := 0; x < FramebufferWidth; x++ {
			p.framebuffer.SetPixel(uint(x), uint(line), WhiteColor)
		}
	}

	if bit.IsSet(5, lcdc) {
		p.renderWindowLine(line, lcdc)
	}

	if bit.IsSet(1, lcdc) {
		p.renderSpriteLine(line, lcdc)
	}
}

func (p *PPU) renderBackgroundLine(line int, lcdc uint8) {
	scy := p.bus.Read(addr.SCY)
	scx := p.bus.Read(addr.SCX)
	bgp := p.bus.Read(addr.BGP)

	tileMap := bgTileMapBase(lcdc, 3)
	y := (uint8(line) + scy)

	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		x := uint8(screenX) + scx
		color := p.tilePixel(tileMap, lcdc, x, y)
		p.framebuffer.SetPixel(uint(screenX), uint(line), applyPalette(bgp, color))
	}
}

func (p *PPU) renderWindowLine(line int, lcdc uint8) {
	wy := int(p.bus.Read(addr.WY))
	if line < wy {
		return
	}

	wx := int(p.bus.Read(addr.WX)) - 7
	bgp := p.bus.Read(addr.BGP)
	tileMap := bgTileMapBase(lcdc, 6)
	y := uint8(line - wy)

	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		if screenX < wx {
			continue
		}
		x := uint8(screenX - wx)
		color := p.tilePixel(tileMap, lcdc, x, y)
		p.framebuffer.SetPixel(uint(screenX), uint(line), applyPalette(bgp, color))
	}
}

// tilePixel resolves the color index (0-3) of the background/window tile
// covering map-space coordinate (x, y).
func (p *PPU) tilePixel(tileMapBase uint16, lcdc uint8, x, y uint8) int {
	tileCol := uint16(x / 8)
	tileRow := uint16(y / 8)
	tileMapAddr := tileMapBase + tileRow*32 + tileCol

	tileNumber := p.bus.Read(tileMapAddr)
	tileAddr := tileDataAddress(lcdc, tileNumber)

	rowAddr := tileAddr + uint16(y%8)*2
	row := TileRow{
		Low:  p.bus.Read(rowAddr),
		High: p.bus.Read(rowAddr + 1),
	}

	return row.GetPixel(int(x % 8))
}

// tileDataAddress resolves the VRAM address of a tile's pattern data,
// honoring LCDC bit 4's signed/unsigned addressing mode.
func tileDataAddress(lcdc uint8, tileNumber uint8) uint16 {
	if bit.IsSet(4, lcdc) {
		return addr.TileData0 + uint16(tileNumber)*16
	}
	return uint16(int32(addr.TileData2) + int32(int8(tileNumber))*16)
}

// bgTileMapBase resolves the tile map base address selected by the given
// LCDC bit (3 for background, 6 for window).
func bgTileMapBase(lcdc uint8, selectBit uint8) uint16 {
	if bit.IsSet(selectBit, lcdc) {
		return addr.TileMap1
	}
	return addr.TileMap0
}

func (p *PPU) renderSpriteLine(line int, lcdc uint8) {
	sprites := p.oam.GetSpritesForScanline(line)
	obp0 := p.bus.Read(addr.OBP0)
	obp1 := p.bus.Read(addr.OBP1)

	for i := range sprites {
		sprite := &sprites[i]
		if !sprite.HasPriorityForAnyPixel() {
			continue
		}

		rowInSprite := line - int(sprite.Y)
		if sprite.FlipY {
			rowInSprite = sprite.Height - 1 - rowInSprite
		}

		tileIndex := sprite.TileIndex
		if sprite.Height == 16 {
			tileIndex &= 0xFE
			if rowInSprite >= 8 {
				tileIndex |= 0x01
				rowInSprite -= 8
			}
		}

		tileAddr := addr.TileData0 + uint16(tileIndex)*16
		rowAddr := tileAddr + uint16(rowInSprite)*2
		row := TileRow{
			Low:  p.bus.Read(rowAddr),
			High: p.bus.Read(rowAddr + 1),
		}

		palette := obp0
		if sprite.PaletteOBP1 {
			palette = obp1
		}

		for pixelX := 0; pixelX < 8; pixelX++ {
			screenX := int(sprite.X) + pixelX
			if screenX < 0 || screenX >= FramebufferWidth {
				continue
			}
			if !sprite.HasPriorityForPixel(pixelX) {
				continue
			}

			column := pixelX
			if sprite.FlipX {
				column = 7 - pixelX
			}
			color := row.GetPixel(column)
			if color == 0 {
				continue // transparent
			}

			if sprite.BehindBG && p.bgPixelOpaque(uint(screenX), uint(line)) {
				continue
			}

			p.framebuffer.SetPixel(uint(screenX), uint(line), applyPalette(palette, color))
		}
	}
}

// bgPixelOpaque reports whether the background pixel already drawn at (x,
// y) is non-white, used to resolve the sprite BehindBG priority flag.
func (p *PPU) bgPixelOpaque(x, y uint) bool {
	return p.framebuffer.GetPixel(x, y) != uint32(WhiteColor)
}

// applyPalette maps a 2-bit color index through a palette register (BGP,
// OBP0, OBP1) to a display color.
func applyPalette(palette uint8, colorIndex int) GBColor {
	shade := (palette >> (uint(colorIndex) * 2)) & 0x03
	switch shade {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	default:
		return BlackColor
	}
}
