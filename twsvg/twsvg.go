// Package twsvg turns icon data into SVG documents and CSS values.
package twsvg

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

// SVG is an icon ready to be rendered: a body with transformations applied
// and the view box it is drawn in.
type SVG struct {
	Body   string
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Build applies the flips and rotation of d and returns the resulting SVG.
func Build(d twiconset.IconData) SVG {
	left, top, width, height := d.Left, d.Top, d.Width, d.Height
	body := d.Body
	rotation := d.Rotate

	var transforms []string
	switch {
	case d.HFlip && d.VFlip:
		rotation += 2
	case d.HFlip:
		transforms = append(transforms,
			"translate("+Number(width+left)+" "+Number(-top)+")",
			"scale(-1 1)")
		left, top = 0, 0
	case d.VFlip:
		transforms = append(transforms,
			"translate("+Number(-left)+" "+Number(height+top)+")",
			"scale(1 -1)")
		left, top = 0, 0
	}

	rotation %= 4
	switch rotation {
	case 1:
		c := height/2 + top
		transforms = append([]string{"rotate(90 " + Number(c) + " " + Number(c) + ")"}, transforms...)
	case 2:
		transforms = append([]string{"rotate(180 " + Number(width/2+left) + " " + Number(height/2+top) + ")"}, transforms...)
	case 3:
		c := width/2 + left
		transforms = append([]string{"rotate(-90 " + Number(c) + " " + Number(c) + ")"}, transforms...)
	}
	if rotation%2 == 1 {
		if left != top {
			left, top = top, left
		}
		if width != height {
			width, height = height, width
		}
	}

	if len(transforms) > 0 {
		body = `<g transform="` + strings.Join(transforms, " ") + `">` + body + `</g>`
	}
	return SVG{Body: body, Left: left, Top: top, Width: width, Height: height}
}

// ViewBox returns the value for the viewBox attribute.
func (s SVG) ViewBox() string {
	return Number(s.Left) + " " + Number(s.Top) + " " + Number(s.Width) + " " + Number(s.Height)
}

// String renders the SVG document with width and height matching the
// view box.
func (s SVG) String() string {
	var sb strings.Builder
	sb.Grow(len(s.Body) + 128)
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="`)
	sb.WriteString(Number(s.Width))
	sb.WriteString(`" height="`)
	sb.WriteString(Number(s.Height))
	sb.WriteString(`" viewBox="`)
	sb.WriteString(s.ViewBox())
	sb.WriteString(`">`)
	sb.WriteString(s.Body)
	sb.WriteString(`</svg>`)
	return sb.String()
}

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}()

// Minify returns a minified version of doc, or doc itself if the minifier
// fails on it.
func Minify(doc string) string {
	out, err := minifier.String("image/svg+xml", doc)
	if err != nil || out == "" {
		return doc
	}
	return out
}

var (
	wsRE       = regexp.MustCompile(`\s+`)
	urlEscaper = strings.NewReplacer(
		`"`, `'`,
		`%`, `%25`,
		`#`, `%23`,
		`<`, `%3C`,
		`>`, `%3E`,
	)
)

// EncodeURL escapes an SVG document for use in a data URL.
func EncodeURL(doc string) string {
	return wsRE.ReplaceAllString(urlEscaper.Replace(doc), " ")
}

// URL returns a CSS url() value with doc as a data URL.
func URL(doc string) string {
	return `url("data:image/svg+xml,` + EncodeURL(doc) + `")`
}

// UsesCurrentColor reports whether the icon is monotone, i.e. its colors come
// from currentColor.  Such icons are rendered as masks, others as backgrounds.
// body must be the source body, Minify lowercases it to "currentcolor".
func UsesCurrentColor(body string) bool {
	return strings.Contains(body, "currentColor")
}

// Number formats f for CSS and SVG output, rounded to 3 decimals.
func Number(f float64) string {
	f = math.Round(f*1000) / 1000
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Em formats f as an em length.
func Em(f float64) string {
	return Number(f) + "em"
}
