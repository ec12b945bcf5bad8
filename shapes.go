package plotscript

import (
	"encoding/json"
	"math"
	"strconv"
)

// ShapeType identifies one of the six shape variants.
type ShapeType string

const (
	TypePoint   ShapeType = "point"
	TypeLine    ShapeType = "line" // infinite line; endpoints define it
	TypeSegment ShapeType = "segment"
	TypeCircle  ShapeType = "circle"
	TypePolygon ShapeType = "polygon"
	TypeText    ShapeType = "text"
)

// idPrefixes map each shape type to its id namespace prefix. Ids are
// "<prefix><n>" with a per-type counter starting at 0.
var idPrefixes = map[ShapeType]string{
	TypePoint:   "P",
	TypeLine:    "L",
	TypeSegment: "S",
	TypeCircle:  "C",
	TypePolygon: "Pg",
	TypeText:    "Tx",
}

// defaultPalette is the fixed swatch cycle used when a command carries no
// color argument. The swatch is picked by total shape count modulo the
// palette size, so color assignment is a pure function of emission order.
var defaultPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c",
}

// Coord is one (x, y) pair.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one emitted drawing primitive. Type selects the variant and
// which geometry fields are meaningful; the rest stay zero. Shapes are
// immutable once appended to a run's output.
type Shape struct {
	ID       string
	Type     ShapeType
	X, Y     float64 // point, circle center, text anchor
	X1, Y1   float64 // line/segment endpoints
	X2, Y2   float64
	R        float64 // circle radius
	Points   []Coord // polygon vertices, at least one
	Text     string  // text content
	FontSize float64
	Color    string // hex color, e.g. "#ff8800"
	Label    string
	GroupID  string
}

// MarshalJSON emits only the fields meaningful for the variant.
// Coordinates are meaningful zeros and always appear for the variant that
// owns them; color/label/groupId are omitted when unset.
func (s Shape) MarshalJSON() ([]byte, error) {
	type meta struct {
		ID      string    `json:"id"`
		Type    ShapeType `json:"type"`
		Color   string    `json:"color,omitempty"`
		Label   string    `json:"label,omitempty"`
		GroupID string    `json:"groupId,omitempty"`
	}
	m := meta{ID: s.ID, Type: s.Type, Color: s.Color, Label: s.Label, GroupID: s.GroupID}

	switch s.Type {
	case TypeLine, TypeSegment:
		return json.Marshal(struct {
			meta
			X1 float64 `json:"x1"`
			Y1 float64 `json:"y1"`
			X2 float64 `json:"x2"`
			Y2 float64 `json:"y2"`
		}{m, s.X1, s.Y1, s.X2, s.Y2})
	case TypeCircle:
		return json.Marshal(struct {
			meta
			X float64 `json:"x"`
			Y float64 `json:"y"`
			R float64 `json:"r"`
		}{m, s.X, s.Y, s.R})
	case TypePolygon:
		return json.Marshal(struct {
			meta
			Points []Coord `json:"points"`
		}{m, s.Points})
	case TypeText:
		return json.Marshal(struct {
			meta
			X        float64 `json:"x"`
			Y        float64 `json:"y"`
			Text     string  `json:"text"`
			FontSize float64 `json:"fontSize"`
		}{m, s.X, s.Y, s.Text, s.FontSize})
	default: // TypePoint
		return json.Marshal(struct {
			meta
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}{m, s.X, s.Y})
	}
}

// MarshalShapes renders a shape list as a JSON array. A nil list
// marshals as [] rather than null.
func MarshalShapes(shapes []Shape, indent bool) ([]byte, error) {
	if shapes == nil {
		shapes = []Shape{}
	}
	if indent {
		return json.MarshalIndent(shapes, "", "  ")
	}
	return json.Marshal(shapes)
}

// CountByType tallies shapes per variant.
func CountByType(shapes []Shape) map[ShapeType]int {
	counts := make(map[ShapeType]int)
	for _, s := range shapes {
		counts[s.Type]++
	}
	return counts
}

// Bounds returns the bounding box over every coordinate the shapes carry.
// ok is false when the list contributes no coordinates. Lines contribute
// their defining endpoints; circles their center plus radius extent.
func Bounds(shapes []Shape) (min, max Coord, ok bool) {
	extend := func(x, y float64) {
		if !ok {
			min, max = Coord{x, y}, Coord{x, y}
			ok = true
			return
		}
		if x < min.X {
			min.X = x
		}
		if y < min.Y {
			min.Y = y
		}
		if x > max.X {
			max.X = x
		}
		if y > max.Y {
			max.Y = y
		}
	}

	for _, s := range shapes {
		switch s.Type {
		case TypePoint, TypeText:
			extend(s.X, s.Y)
		case TypeLine, TypeSegment:
			extend(s.X1, s.Y1)
			extend(s.X2, s.Y2)
		case TypeCircle:
			extend(s.X-s.R, s.Y-s.R)
			extend(s.X+s.R, s.Y+s.R)
		case TypePolygon:
			for _, p := range s.Points {
				extend(p.X, p.Y)
			}
		}
	}
	return min, max, ok
}

// copyShapes deep-copies a shape list so cached canonical results stay
// untouched by callers.
func copyShapes(shapes []Shape) []Shape {
	if shapes == nil {
		return nil
	}
	out := make([]Shape, len(shapes))
	copy(out, shapes)
	for i := range out {
		if out[i].Points != nil {
			pts := make([]Coord, len(out[i].Points))
			copy(pts, out[i].Points)
			out[i].Points = pts
		}
	}
	return out
}

// formatNumber renders a float the way script-facing strings expect:
// integral values in plain decimal without a trailing ".0", everything
// else in shortest form.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
