package render

import (
	"image"
	"image/color"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/image/font"
)

// Weather glyphs are drawn procedurally from shape primitives. No fonts, no
// emoji, no icon files: a cloud is three overlapping ellipses, a sun is a
// circle with rays, rain is a row of droplets.

var (
	sunColour   = mustHex("#FFD700")
	cloudColour = mustHex("#CCDDEE")
	rainColour  = mustHex("#4fc3f7")
	snowColour  = mustHex("#FFFFFF")
	stormColour = mustHex("#FFD700")
	fogColour   = mustHex("#889aaa")
)

type iconFunc func(gc *draw2dimg.GraphicContext, cx, cy, size float64)

// wmoIcons maps WMO weather interpretation codes (as reported by Open-Meteo)
// to glyph drawers. Unknown codes fall back to the cloudy glyph.
var wmoIcons = map[int]iconFunc{
	0:  iconClear,
	1:  iconClear,
	2:  iconPartlyCloudy,
	3:  iconCloudy,
	45: iconFog,
	48: iconFog,
	51: iconDrizzle,
	53: iconDrizzle,
	55: iconDrizzle,
	61: iconRain,
	63: iconRain,
	65: iconRain,
	71: iconSnow,
	73: iconSnow,
	75: iconSnow,
	77: iconSnow,
	80: iconShowers,
	81: iconShowers,
	82: iconRain,
	85: iconSnow,
	86: iconSnow,
	95: iconThunderstorm,
	96: iconThunderstorm,
	99: iconThunderstorm,
}

// DrawWeatherIcon draws the glyph for wmoCode onto img with (x, y) as the
// top-left corner of a size×size bounding box. The canvas is mutated in
// place; the call never fails.
func DrawWeatherIcon(img *image.RGBA, wmoCode, x, y, size int) {
	if size <= 0 {
		size = 64
	}
	gc := draw2dimg.NewGraphicContext(img)
	cx := float64(x) + float64(size)/2
	cy := float64(y) + float64(size)/2

	fn, ok := wmoIcons[wmoCode]
	if !ok {
		fn = iconCloudy
	}
	fn(gc, cx, cy, float64(size))
}

// Primitives shared by the icon glyphs.

func fillCircle(gc *draw2dimg.GraphicContext, cx, cy, r float64, col color.Color) {
	gc.SetFillColor(col)
	draw2dkit.Ellipse(gc, cx, cy, r, r)
	gc.Fill()
}

func fillEllipse(gc *draw2dimg.GraphicContext, cx, cy, rx, ry float64, col color.Color) {
	gc.SetFillColor(col)
	draw2dkit.Ellipse(gc, cx, cy, rx, ry)
	gc.Fill()
}

func strokeLine(gc *draw2dimg.GraphicContext, x0, y0, x1, y1, width float64, col color.Color) {
	gc.SetStrokeColor(col)
	gc.SetLineWidth(width)
	gc.BeginPath()
	gc.MoveTo(x0, y0)
	gc.LineTo(x1, y1)
	gc.Stroke()
}

func fillPolygon(gc *draw2dimg.GraphicContext, points [][2]float64, col color.Color) {
	if len(points) < 3 {
		return
	}
	gc.SetFillColor(col)
	gc.BeginPath()
	gc.MoveTo(points[0][0], points[0][1])
	for _, p := range points[1:] {
		gc.LineTo(p[0], p[1])
	}
	gc.Close()
	gc.Fill()
}

// cloud draws the classic three-bump silhouette: a wide body ellipse with a
// bump circle at each shoulder and a taller one in the middle.
func cloud(gc *draw2dimg.GraphicContext, cx, cy, w, h float64, col color.Color) {
	bx := cx - w/2
	by := cy - h/4
	fillEllipse(gc, bx+w/2, by+h/4, w/2, h/4, col)
	fillCircle(gc, bx+w/4, by, h/3, col)
	fillCircle(gc, bx+w/2, by-h/6, math.Max(1, h/2-2), col)
	fillCircle(gc, bx+3*w/4, by, h/3, col)
}

func sun(gc *draw2dimg.GraphicContext, cx, cy, r float64, col color.Color) {
	rayLen := r / 2
	rayWidth := math.Max(1, r/8)
	for angle := 0.0; angle < 360; angle += 45 {
		rad := angle * math.Pi / 180
		x1 := cx + (r+2)*math.Cos(rad)
		y1 := cy + (r+2)*math.Sin(rad)
		x2 := cx + (r+rayLen)*math.Cos(rad)
		y2 := cy + (r+rayLen)*math.Sin(rad)
		strokeLine(gc, x1, y1, x2, y2, rayWidth, col)
	}
	fillCircle(gc, cx, cy, r, col)
}

func rainDrops(gc *draw2dimg.GraphicContext, cx, cy, w, h float64, col color.Color, count int) {
	dropW := math.Max(2, w/12)
	dropH := math.Max(4, h/4)
	spacing := w / float64(count+1)
	startX := cx - w/2 + spacing
	for i := 0; i < count; i++ {
		dx := startX + float64(i)*spacing
		fillEllipse(gc, dx, cy+dropH/2, dropW, dropH/2, col)
	}
}

func snowDots(gc *draw2dimg.GraphicContext, cx, cy, w, h float64, col color.Color) {
	r := math.Max(2, w/14)
	const cols, rows = 3, 2
	colSpacing := w / (cols + 1)
	rowSpacing := h / (rows + 1)
	for row := 0; row < rows; row++ {
		for c := 0; c < cols; c++ {
			dx := cx - w/2 + colSpacing*float64(c+1)
			dy := cy + rowSpacing*float64(row+1)
			fillCircle(gc, dx, dy, r, col)
		}
	}
}

func lightning(gc *draw2dimg.GraphicContext, cx, cy, size float64, col color.Color) {
	s := size
	fillPolygon(gc, [][2]float64{
		{cx + s*0.1, cy - s*0.5},
		{cx - s*0.1, cy},
		{cx + s*0.15, cy},
		{cx - s*0.1, cy + s*0.5},
		{cx + s*0.05, cy + s*0.1},
		{cx + s*0.2, cy + s*0.1},
	}, col)
}

func fogLines(gc *draw2dimg.GraphicContext, cx, cy, w, h float64, col color.Color) {
	const lines = 3
	lw := math.Max(2, h/10)
	spacing := h / (lines + 1)
	for i := 0; i < lines; i++ {
		y := cy - h/2 + spacing*float64(i+1)
		inset := float64(i%2) * (w / 6)
		strokeLine(gc, cx-w/2+inset, y, cx+w/2-inset, y, lw, col)
	}
}

// Icon glyphs, one per WMO bucket.

func iconClear(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	sun(gc, cx, cy, size/3, sunColour)
}

func iconPartlyCloudy(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	// Sun peeking out from behind the cloud
	sun(gc, cx-size/6, cy-size/6, size/4, sunColour)
	cloud(gc, cx+size/8, cy+size/8, size*0.7, size*0.45, cloudColour)
}

func iconCloudy(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	cloud(gc, cx, cy, size*0.85, size*0.55, cloudColour)
}

func iconFog(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	fogLines(gc, cx, cy, size*0.85, size, fogColour)
}

func iconDrizzle(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	cloud(gc, cx, cy-size/6, size*0.8, size*0.45, cloudColour)
	rainDrops(gc, cx, cy+size/6, size*0.6, size/3, rainColour, 3)
}

func iconRain(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	cloud(gc, cx, cy-size/6, size*0.8, size*0.4, cloudColour)
	rainDrops(gc, cx, cy+size/8, size*0.7, size/3, rainColour, 4)
}

func iconSnow(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	cloud(gc, cx, cy-size/6, size*0.8, size*0.4, cloudColour)
	snowDots(gc, cx, cy+size/8, size*0.7, size/3, snowColour)
}

func iconShowers(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	sun(gc, cx-size/4, cy-size/3, size/5, sunColour)
	cloud(gc, cx+size/8, cy-size/8, size*0.7, size*0.38, cloudColour)
	rainDrops(gc, cx+size/8, cy+size/6, size*0.5, size/3, rainColour, 3)
}

func iconThunderstorm(gc *draw2dimg.GraphicContext, cx, cy, size float64) {
	cloud(gc, cx, cy-size/4, size*0.8, size*0.38, cloudColour)
	lightning(gc, cx, cy+size/8, size*0.4, stormColour)
}

// DrawWindBadge draws three tapering wind streaks with an arrowhead, then the
// speed text to the right. (x, y) is the top-left of the badge area.
func DrawWindBadge(img *image.RGBA, speed string, x, y int, face font.Face, textColour color.Color) {
	gc := draw2dimg.NewGraphicContext(img)
	ic := mustHex("#7799bb")
	cy := float64(y) + 10

	for _, streak := range [][2]float64{{-4, 14}, {0, 18}, {4, 14}} {
		strokeLine(gc, float64(x), cy+streak[0], float64(x)+streak[1], cy+streak[0], 2, ic)
	}

	ax := float64(x) + 18
	fillPolygon(gc, [][2]float64{{ax, cy - 5}, {ax + 8, cy}, {ax, cy + 5}}, ic)

	drawString(img, face, speed, x+30, y+2, textColour)
}

// DrawHumidityBadge draws a teardrop followed by the humidity text.
func DrawHumidityBadge(img *image.RGBA, humidity string, x, y int, face font.Face, textColour color.Color) {
	gc := draw2dimg.NewGraphicContext(img)
	ic := rainColour
	r := 6.0
	cx := float64(x) + r + 1
	cy := float64(y) + 14

	fillCircle(gc, cx, cy, r, ic)
	fillPolygon(gc, [][2]float64{
		{cx, cy - r - 7},
		{cx - r + 1, cy - r + 2},
		{cx + r - 1, cy - r + 2},
	}, ic)

	drawString(img, face, humidity, x+18, y+2, textColour)
}
