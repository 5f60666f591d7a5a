package periph

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Display size of the pad.
const (
	DisplayWidth  = 128
	DisplayHeight = 32
)

// Display renders text on an SSD1306 panel.
type Display struct {
	dev *ssd1306.Dev
	bus i2c.BusCloser
}

// OpenDisplay opens the panel on the named I2C bus, "" for the first
// one available.
func OpenDisplay(busName string) (*Display, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, err
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = DisplayWidth, DisplayHeight
	opts.Sequential = true
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return &Display{dev: dev, bus: bus}, nil
}

// Render implements display.Renderer.
func (d *Display) Render(text string) error {
	img := RenderText(d.dev.Bounds(), text)
	return d.dev.Draw(d.dev.Bounds(), img, image.Point{})
}

// Close blanks the panel and releases the bus.
func (d *Display) Close() error {
	err := d.dev.Halt()
	if cerr := d.bus.Close(); err == nil {
		err = cerr
	}
	return err
}

// RenderText draws text vertically centered. Text short enough is
// drawn at double size.
func RenderText(bounds image.Rectangle, text string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(bounds)
	if text == "" {
		return img
	}
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Ascent + face.Descent
	scale := 1
	if width*2 <= bounds.Dx() && height*2 <= bounds.Dy() {
		scale = 2
	}

	glyphs := image1bit.NewVerticalLSB(image.Rect(0, 0, width, height))
	drawer := font.Drawer{
		Dst:  glyphs,
		Src:  &image.Uniform{C: image1bit.On},
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(text)

	x0 := bounds.Min.X + (bounds.Dx()-width*scale)/2
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	y0 := bounds.Min.Y + (bounds.Dy()-height*scale)/2
	if scale == 1 {
		draw.Draw(img, image.Rect(x0, y0, x0+width, y0+height), glyphs, image.Point{}, draw.Src)
		return img
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if glyphs.BitAt(x, y) {
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						img.SetBit(x0+x*scale+dx, y0+y*scale+dy, image1bit.On)
					}
				}
			}
		}
	}
	return img
}
