// Package icon renders tray icons for deskshell.
//
// Platforms without tray title text (Linux, Windows) show the unread count
// as a red circle with a white number drawn over the application mark.
// Icons are 48×48 pixels, which KDE and GNOME scale cleanly.
package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Size is the tray icon edge length in pixels.
const Size = 48

var (
	brand = color.RGBA{52, 58, 64, 255}
	red   = color.RGBA{220, 53, 69, 255}
	white = color.RGBA{255, 255, 255, 255}
)

// App returns the plain application mark: a dark rounded disc.
func App() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	fillCircle(img, brand, Size/2, Size/2, Size/2)
	return encode(img)
}

// Blank returns a fully transparent icon, shown while the tray is turned off.
func Blank() ([]byte, error) {
	return encode(image.NewRGBA(image.Rect(0, 0, Size, Size)))
}

// Badge returns the application mark with count drawn in a red badge.
// A count of zero or less yields the plain mark.
func Badge(count int) ([]byte, error) {
	if count <= 0 {
		return App()
	}

	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	fillCircle(img, brand, Size/2, Size/2, Size/2)

	// Badge sits in the top-right corner and covers most of the mark.
	r := Size * 3 / 8
	cx, cy := Size-r, r
	fillCircle(img, red, cx, cy, r)
	drawText(img, Label(count), cx, cy, 26)

	return encode(img)
}

// Label returns the badge text: the count for 1-9, "9+" above that.
func Label(count int) string {
	if count > 9 {
		return "9+"
	}
	return strconv.Itoa(count)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func fillCircle(img *image.RGBA, fill color.RGBA, cx, cy, radius int) {
	r2 := float64(radius * radius)
	for py := cy - radius; py < cy+radius; py++ {
		for px := cx - radius; px < cx+radius; px++ {
			dx := float64(px-cx) + 0.5
			dy := float64(py-cy) + 0.5
			if dx*dx+dy*dy <= r2 {
				img.Set(px, py, fill)
			}
		}
	}
}

// drawText centers text on (cx, cy) using Go's monospace bold face.
func drawText(img *image.RGBA, text string, cx, cy int, points float64) {
	parsed, err := opentype.Parse(gomonobold.TTF)
	if err != nil {
		return // badge without digits is still a badge
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: points, DPI: 72})
	if err != nil {
		return
	}
	defer face.Close() //nolint:errcheck // nothing to do on failure

	bounds, advance := font.BoundString(face, text)
	mid := (bounds.Max.Y + bounds.Min.Y) / 2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(white),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(cx - advance.Ceil()/2), Y: fixed.I(cy) - mid},
	}
	d.DrawString(text)
}

// Cache keeps rendered badges by count.
type Cache struct {
	icons map[int][]byte
	mu    sync.RWMutex
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{icons: make(map[int][]byte)}
}

// Badge returns the cached badge for count, rendering it on first use.
// Counts above 9 share one entry since they render identically.
func (c *Cache) Badge(count int) ([]byte, error) {
	key := min(max(count, 0), 10)

	c.mu.RLock()
	data, ok := c.icons[key]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := Badge(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.icons[key] = data
	c.mu.Unlock()
	return data, nil
}
