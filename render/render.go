// Package render paints game snapshots as images.
package render

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/snake-grid/memimg"
	"github.com/hoshinonyaruko/snake-grid/structs"
)

const (
	emptyColor = "#e5e7eb"
	gridColor  = "#d1d5db"
	snakeColor = "#000000"
	foodColor  = "#ef4444"
)

// Board draws a snapshot at BlockSize pixels per cell.
type Board struct {
	BlockSize int

	// Icons and FoodIcon are optional; without them food is a red dot.
	Icons    *memimg.Cache
	FoodIcon string
}

// Draw renders snap. A finished game is blurred under a Game Over banner.
func (b *Board) Draw(snap structs.Snapshot) image.Image {
	side := snap.GridSize * b.BlockSize
	dc := gg.NewContext(side, side)

	dc.SetHexColor(emptyColor)
	dc.Clear()
	renderGrid(dc, side, side, b.BlockSize)

	b.drawFood(dc, snap.Food)
	// 蛇画在食物上面
	for _, c := range snap.Snake {
		b.drawSnakeCell(dc, c)
	}

	if !snap.GameOver {
		return dc.Image()
	}
	return b.drawGameOver(dc.Image(), snap.Score)
}

// EncodePNG writes the rendered board to w.
func (b *Board) EncodePNG(w io.Writer, snap structs.Snapshot) error {
	img := b.Draw(snap)
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	return nil
}

func (b *Board) drawSnakeCell(dc *gg.Context, c structs.Cell) {
	bs := float64(b.BlockSize)
	inset := bs / 20
	dc.SetHexColor(snakeColor)
	dc.DrawRoundedRectangle(float64(c.X)*bs+inset, float64(c.Y)*bs+inset, bs-2*inset, bs-2*inset, bs/8)
	dc.Fill()
}

func (b *Board) drawFood(dc *gg.Context, c structs.Cell) {
	bs := float64(b.BlockSize)
	cx := float64(c.X)*bs + bs/2
	cy := float64(c.Y)*bs + bs/2

	if b.Icons != nil && b.FoodIcon != "" {
		if img, found := b.Icons.Get(b.FoodIcon); found {
			dc.DrawImageAnchored(img, int(cx), int(cy), 0.5, 0.5)
			return
		}
	}
	dc.SetHexColor(foodColor)
	dc.DrawCircle(cx, cy, bs/2-bs/20)
	dc.Fill()
}

func (b *Board) drawGameOver(board image.Image, score int) image.Image {
	blurred := imaging.Blur(board, 3.5)
	dc := gg.NewContextForImage(blurred)
	w := float64(dc.Width())
	h := float64(dc.Height())

	dc.SetRGBA(1, 1, 1, 0.6)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Game Over!", w/2, h/2-10, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("Score: %d", score), w/2, h/2+10, 0.5, 0.5)
	return dc.Image()
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetHexColor(gridColor)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}
