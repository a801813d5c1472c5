// Package render draws the cosmetic images attached to announcements: the
// role-distribution card grid and the lobby invite QR code.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sort"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vntrieu/werewolf/internal/roles"
)

const (
	cardWidth   = 140
	cardHeight  = 72
	cardGap     = 12
	padding     = 16
	maxColumns  = 4
	stripeWidth = 8

	// InviteSize is the edge length of the invite QR code in pixels.
	InviteSize = 256
)

var (
	background = color.RGBA{R: 0x2B, G: 0x2D, B: 0x31, A: 0xFF}
	cardFill   = color.RGBA{R: 0x1E, G: 0x1F, B: 0x22, A: 0xFF}
	textColor  = color.RGBA{R: 0xF2, G: 0xF3, B: 0xF5, A: 0xFF}
	fallback   = color.RGBA{R: 0x99, G: 0xAA, B: 0xB5, A: 0xFF}
)

// ErrNoRoles is returned when there is nothing to draw.
var ErrNoRoles = errors.New("no roles to render")

// Renderer implements games.Renderer with the standard image packages.
type Renderer struct{}

// New returns a Renderer.
func New() *Renderer { return &Renderer{} }

type card struct {
	def   roles.Definition
	count int
}

// RenderRoleDistribution draws one card per distinct role with its count,
// ordered by role priority and tinted with the role color.
func (r *Renderer) RenderRoleDistribution(ctx context.Context, tags []roles.Role) ([]byte, error) {
	if len(tags) == 0 {
		return nil, ErrNoRoles
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[roles.Role]int, len(tags))
	for _, t := range tags {
		counts[t]++
	}
	cards := make([]card, 0, len(counts))
	for role, n := range counts {
		def, ok := roles.Lookup(role)
		if !ok {
			return nil, fmt.Errorf("render: unknown role %q", role)
		}
		cards = append(cards, card{def: def, count: n})
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].def.Priority != cards[j].def.Priority {
			return cards[i].def.Priority < cards[j].def.Priority
		}
		return cards[i].def.Role < cards[j].def.Role
	})

	cols := min(len(cards), maxColumns)
	rows := (len(cards) + cols - 1) / cols
	width := 2*padding + cols*cardWidth + (cols-1)*cardGap
	height := 2*padding + rows*cardHeight + (rows-1)*cardGap

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, c := range cards {
		x := padding + (i%cols)*(cardWidth+cardGap)
		y := padding + (i/cols)*(cardHeight+cardGap)
		drawCard(img, image.Rect(x, y, x+cardWidth, y+cardHeight), c)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCard(img *image.RGBA, rect image.Rectangle, c card) {
	tint := parseHex(c.def.Color)
	draw.Draw(img, rect, image.NewUniform(cardFill), image.Point{}, draw.Src)
	stripe := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+stripeWidth, rect.Max.Y)
	draw.Draw(img, stripe, image.NewUniform(tint), image.Point{}, draw.Src)

	left := rect.Min.X + stripeWidth + 10
	label(img, left, rect.Min.Y+28, c.def.Name, textColor)
	label(img, left, rect.Min.Y+52, "x"+strconv.Itoa(c.count), tint)
}

func label(img draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// parseHex reads "#RRGGBB"; anything else yields a neutral grey.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

// RenderInvite encodes url as a PNG QR code.
func (r *Renderer) RenderInvite(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("render: empty invite url")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := qrcode.Encode(url, qrcode.Medium, InviteSize)
	if err != nil {
		return nil, fmt.Errorf("render: encode qr: %w", err)
	}
	return out, nil
}
