// Package render draws the scene as a terminal side view.
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/woodcut/treehouse/internal/component"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/prop"
	"github.com/woodcut/treehouse/internal/world"
)

// Canvas is the part of tcell.Screen the renderer needs.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
	Clear()
	Show()
}

// Renderer projects the scene onto a canvas, looking along +Z so that the
// player's left is the screen's left. Rows are twice as tall as columns are
// wide, so Y is drawn at half scale.
type Renderer struct {
	canvas  Canvas
	scale   float64 // columns per metre
	centerX float64 // world X drawn at the middle column
}

func NewRenderer(c Canvas, scale float64) *Renderer {
	return &Renderer{canvas: c, scale: scale, centerX: 4}
}

// Project maps a world point to a cell for a canvas of size w x h. The
// ground sits on the row above the status line.
func (r *Renderer) Project(p physics.Vec3, w, h int) (col, row int) {
	col = w/2 - int(math.Round((p[0]-r.centerX)*r.scale))
	row = h - 2 - int(math.Round(p[1]*r.scale/2))
	return col, row
}

// Draw repaints the whole frame.
func (r *Renderer) Draw(pw physics.World, st *world.State) {
	r.canvas.Clear()
	w, h := r.canvas.Size()
	if w <= 0 || h < 2 {
		return
	}
	// The limbs' boxes overlap the torso, so the player is painted last.
	var player *physics.BodyView
	pw.Bodies(func(handle physics.Handle, b physics.BodyView) {
		if handle == st.Player && b.Name == prop.Player {
			player = &b
			return
		}
		r.drawBody(handle, b, st, w, h)
	})
	if player != nil {
		r.drawBody(st.Player, *player, st, w, h)
	}
	r.text(0, h-1, StatusLine(st), tcell.StyleDefault.Reverse(true), w)
	r.canvas.Show()
}

func (r *Renderer) drawBody(handle physics.Handle, b physics.BodyView, st *world.State, w, h int) {
	sprite := component.Sprite{Glyph: world.Glyph(b.Name)}
	if id, ok := st.ActorOf(handle); ok {
		if sp, ok := st.Sprites.Get(id); ok {
			sprite = *sp
		}
	}
	for _, s := range b.Shapes {
		r.drawShape(b.Pose, s, sprite, w, h)
	}
}

// drawShape fills the shape's bounding box. A shape's own colour wins over
// the sprite's.
func (r *Renderer) drawShape(pose physics.Transform, s physics.Shape, sprite component.Sprite, w, h int) {
	glyph := sprite.Glyph
	color := s.Color
	if color == (physics.Vec3{}) {
		color = sprite.Color
	}
	style := tcell.StyleDefault
	if color != (physics.Vec3{}) {
		style = style.Foreground(tcell.NewRGBColor(channel(color[0]), channel(color[1]), channel(color[2])))
	}
	if s.Geometry.Kind() == physics.KindPlane {
		_, row := r.Project(pose.P, w, h)
		for x := 0; x < w; x++ {
			r.canvas.SetContent(x, row, glyph, nil, style)
		}
		return
	}
	center := pose.Mul(s.Local).P
	if m, ok := s.Geometry.(physics.ConvexMesh); ok {
		center = center.Add(pose.Q.Rotate(m.Center()))
	}
	half := s.Geometry.HalfExtents()
	c0, r0 := r.Project(physics.Vec3{center[0] + half[0], center[1] + half[1], 0}, w, h)
	c1, r1 := r.Project(physics.Vec3{center[0] - half[0], center[1] - half[1], 0}, w, h)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if col >= 0 && col < w && row >= 0 && row < h-1 {
				r.canvas.SetContent(col, row, glyph, nil, style)
			}
		}
	}
}

func (r *Renderer) text(x, y int, s string, style tcell.Style, w int) {
	for _, ch := range s {
		if x >= w {
			return
		}
		r.canvas.SetContent(x, y, ch, nil, style)
		x++
	}
	for ; x < w; x++ {
		r.canvas.SetContent(x, y, ' ', nil, style)
	}
}

func channel(v float64) int32 {
	return int32(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// StatusLine summarises the controller state.
func StatusLine(st *world.State) string {
	mode := "idle"
	if st.Cutting.Started {
		mode = "cutting"
	}
	house := "standing"
	particles := 0
	if st.Emitter != nil {
		particles = len(st.Emitter.Live())
	}
	if st.Collapsed {
		house = fmt.Sprintf("collapsed (%d pieces)", st.Pieces.Len())
	}
	return fmt.Sprintf(" tick %d | %s %.2fs | impulse %.0f | sawdust %d | house %s | arrows/wasd move, q quits",
		st.Tick, mode, st.Cutting.Elapsed, st.Cutting.TotalImpulse, particles, house)
}
