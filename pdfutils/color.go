package pdfutils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

var (
	ErrInvalidColorFormat      = errors.New("invalid color format")
	ErrMalformedHighlightColor = errors.New("malformed highlight color")
)

// RGB holds 8 bit channels.
type RGB struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// RGBA is a highlight colour: 8 bit channels plus an opacity in [0,1].
type RGBA struct {
	RGB
	Alpha float64
}

var hexColour = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func HexToRgb(hex string) (RGB, error) {
	hex = strings.TrimSpace(hex)
	if !hexColour.MatchString(hex) {
		return RGB{}, errors.Wrapf(ErrInvalidColorFormat, "%q", hex)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, errors.Wrapf(ErrInvalidColorFormat, "%q", hex)
	}

	r, g, b := c.RGB255()

	return RGB{Red: r, Green: g, Blue: b}, nil
}

func RgbToHex(c RGB) string {
	return "#" + toHEXStr(int(c.Red)) + toHEXStr(int(c.Green)) + toHEXStr(int(c.Blue))
}

var numberComponent = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)

// RgbStringToHex converts "rgb(r, g, b)" or "rgba(r, g, b, a)" to "#rrggbb".
// The alpha component is dropped.
func RgbStringToHex(s string) (string, error) {
	c, err := parseRgbString(s)
	if err != nil {
		return "", err
	}

	return RgbToHex(c), nil
}

func parseRgbString(s string) (RGB, error) {
	if !strings.HasPrefix(strings.TrimSpace(s), "rgb") {
		return RGB{}, errors.Wrapf(ErrInvalidColorFormat, "%q", s)
	}

	parts := numberComponent.FindAllString(s, -1)
	if len(parts) < 3 {
		return RGB{}, errors.Wrapf(ErrInvalidColorFormat, "%q", s)
	}

	var channels [3]uint8

	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil || v > 255 {
			return RGB{}, errors.Wrapf(ErrInvalidColorFormat, "%q", s)
		}
		channels[i] = uint8(math.Round(v))
	}

	return RGB{Red: channels[0], Green: channels[1], Blue: channels[2]}, nil
}

// ParseColour accepts "#rrggbb", "#rgb", "rgb(...)" and "rgba(...)".
func ParseColour(s string) (RGB, error) {
	trimmed := strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(trimmed, "#"):
		return HexToRgb(trimmed)
	case strings.HasPrefix(trimmed, "rgb"):
		return parseRgbString(trimmed)
	}

	return RGB{}, errors.Wrapf(ErrInvalidColorFormat, "%q", s)
}

// ParseHighlightColour reads the four numeric components of a highlight
// colour such as "rgba(255, 235, 59, 0.4)" or "255,235,59,0.4".
func ParseHighlightColour(s string) (RGBA, error) {
	parts := numberComponent.FindAllString(s, -1)
	if len(parts) < 4 {
		return RGBA{}, errors.Wrapf(ErrMalformedHighlightColor, "%q", s)
	}

	var v [4]float64

	for i := range v {
		f, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return RGBA{}, errors.Wrapf(ErrMalformedHighlightColor, "%q", s)
		}
		v[i] = f
	}

	for i := 0; i < 3; i++ {
		if v[i] > 255 {
			return RGBA{}, errors.Wrapf(ErrMalformedHighlightColor, "%q", s)
		}
	}

	return RGBA{
		RGB: RGB{
			Red:   uint8(math.Round(v[0])),
			Green: uint8(math.Round(v[1])),
			Blue:  uint8(math.Round(v[2])),
		},
		Alpha: math.Min(v[3], 1),
	}, nil
}

// ScaleChannel maps an 8 bit channel to [0,1], rounded to two decimals.
func ScaleChannel(v uint8) float64 {
	return math.Round(float64(v)/255*100) / 100
}

func (c RGB) DeviceRGB() *model.PdfColorDeviceRGB {
	return model.NewPdfColorDeviceRGB(ScaleChannel(c.Red), ScaleChannel(c.Green), ScaleChannel(c.Blue))
}

// PdfObject returns the colour as an annotation /C array.
func (c RGB) PdfObject() *core.PdfObjectArray {
	return core.MakeArrayFromFloats([]float64{ScaleChannel(c.Red), ScaleChannel(c.Green), ScaleChannel(c.Blue)})
}

func toHEXStr(i int) string {
	s := fmt.Sprintf("%x", i)

	if len(s) == 1 {
		return "0" + s
	}

	return s
}

func PDFObjToHex(c core.PdfObject) string {
	if c == nil {
		return ""
	}

	objArr, ok := core.GetArray(c)
	if !ok {
		return ""
	}

	clr, err := objArr.ToFloat64Array()
	if err != nil {
		return ""
	}

	if len(clr) < 3 {
		return ""
	}

	return "#" + toHEXStr(int(math.Round(clr[0]*255))) + toHEXStr(int(math.Round(clr[1]*255))) + toHEXStr(int(math.Round(clr[2]*255)))
}

func GetAnnotationColor(annotation *model.PdfAnnotation) string {
	if annotation == nil {
		return ""
	}

	return PDFObjToHex(annotation.C)
}

func GetAnnotationColorCategory(annotation *model.PdfAnnotation) string {
	if annotation == nil {
		return ""
	}

	return PDFObjToColorCategory(annotation.C)
}

func PDFObjToColorCategory(c core.PdfObject) string {
	hex := PDFObjToHex(c)
	if hex == "" {
		return ""
	}

	color, err := colorful.Hex(hex)
	if err != nil {
		return ""
	}

	return ColorCategory(color)
}

// ColorCategory names the hue bucket of a colour.
func ColorCategory(color colorful.Color) string {
	h, s, l := color.Hsl()

	if l < 0.12 {
		return "Black"
	}
	if l > 0.98 {
		return "White"
	}
	if s < 0.2 {
		return "Gray"
	}
	if h < 15 {
		return "Red"
	}
	if h < 45 {
		return "Orange"
	}
	if h < 65 {
		return "Yellow"
	}
	if h < 170 {
		return "Green"
	}
	if h < 190 {
		return "Cyan"
	}
	if h < 263 {
		return "Blue"
	}
	if h < 280 {
		return "Purple"
	}
	if h < 335 {
		return "Magenta"
	}
	return "Red"
}
