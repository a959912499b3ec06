// Package presets holds the static Manim vocabulary the generators
// draw from: color names, palettes, shape snippets, fonts and rate
// functions. Everything here is plain data.
package presets

import "fmt"

// Colors lists the Manim predefined color constants.
var Colors = []string{
	"WHITE", "BLACK", "RED", "GREEN", "BLUE", "YELLOW", "ORANGE",
	"PURPLE", "PINK", "GRAY", "GREY", "BROWN", "TEAL", "MAROON",
	"GOLD", "SILVER",
	"RED_A", "RED_B", "RED_C", "RED_D", "RED_E",
	"BLUE_A", "BLUE_B", "BLUE_C", "BLUE_D", "BLUE_E",
	"GREEN_A", "GREEN_B", "GREEN_C", "GREEN_D", "GREEN_E",
	"YELLOW_A", "YELLOW_B", "YELLOW_C", "YELLOW_D", "YELLOW_E",
	"ORANGE_A", "ORANGE_B", "ORANGE_C", "ORANGE_D", "ORANGE_E",
	"PURPLE_A", "PURPLE_B", "PURPLE_C", "PURPLE_D", "PURPLE_E",
	"PINK_A", "PINK_B", "PINK_C", "PINK_D", "PINK_E",
	"GRAY_A", "GRAY_B", "GRAY_C", "GRAY_D", "GRAY_E",
	"TEAL_A", "TEAL_B", "TEAL_C", "TEAL_D", "TEAL_E",
}

// Palettes maps preset palette names to ordered color lists. Entries
// may be Manim constants or hex strings.
var Palettes = map[string][]string{
	"Rainbow":    {"RED", "ORANGE", "YELLOW", "GREEN", "BLUE", "PURPLE"},
	"Sunset":     {"#FF6B6B", "#FF8E53", "#FFA07A", "#FFB347", "#FFD700"},
	"Ocean":      {"#001F3F", "#0074D9", "#39CCCC", "#7FDBFF", "#B2EBF2"},
	"Forest":     {"#2D5016", "#3D7C47", "#5BA85B", "#7FB069", "#A8D5BA"},
	"Fire":       {"#FF0000", "#FF4500", "#FF6347", "#FF8C00", "#FFA500"},
	"Ice":        {"#E0F7FA", "#B2EBF2", "#80DEEA", "#4DD0E1", "#26C6DA"},
	"Pastel":     {"#FFB3BA", "#FFDFBA", "#FFFFBA", "#BAFFC9", "#BAE1FF"},
	"Monochrome": {"#000000", "#333333", "#666666", "#999999", "#CCCCCC", "#FFFFFF"},
	"Vibrant":    {"#FF1744", "#00E676", "#2196F3", "#FFC107", "#9C27B0"},
}

// Shapes2D maps shape names to Manim construction snippets with a
// {color} slot.
var Shapes2D = map[string]string{
	"circle":    "Circle(radius=1, color=%s)",
	"square":    "Square(side_length=2, color=%s)",
	"rectangle": "Rectangle(width=4, height=2, color=%s)",
	"triangle":  "Triangle(color=%s)",
	"polygon":   "RegularPolygon(n=6, radius=1, color=%s)",
	"star":      "Star(n=5, outer_radius=1, inner_radius=0.5, color=%s)",
	"ellipse":   "Ellipse(width=4, height=2, color=%s)",
	"line":      "Line(start=LEFT*2, end=RIGHT*2, color=%s)",
	"arrow":     "Arrow(start=LEFT*2, end=RIGHT*2, color=%s)",
}

// Shapes3D maps 3D object names to construction snippets.
var Shapes3D = map[string]string{
	"sphere":   "Sphere(radius=1, color=%s)",
	"cube":     "Cube(side_length=2, color=%s)",
	"torus":    "Torus(major_radius=1.5, minor_radius=0.5, color=%s)",
	"cylinder": "Cylinder(radius=1, height=2, color=%s)",
	"cone":     "Cone(base_radius=1, height=2, color=%s)",
	"prism":    "Prism(dimensions=[1, 1, 1], color=%s)",
}

// FallbackFonts are fonts assumed present on most systems when no font
// detection is available.
var FallbackFonts = []string{
	"Arial", "Times New Roman", "Courier New",
	"Helvetica", "Verdana", "Georgia", "Comic Sans MS",
}

// Easings lists the Manim rate function names.
var Easings = []string{
	"linear", "smooth", "exponential_decay", "sine", "quadratic",
	"cubic", "quartic", "quintic", "exponential", "circular",
	"back", "elastic", "bounce", "there_and_back",
	"there_and_back_with_pause", "running_start", "not_quite_there",
	"wiggle",
}

// Shape builds the construction snippet for a named shape, checking 2D
// shapes before 3D ones. The second return is false for unknown names.
func Shape(name, color string) (string, bool) {
	if tpl, ok := Shapes2D[name]; ok {
		return fmt.Sprintf(tpl, color), true
	}
	if tpl, ok := Shapes3D[name]; ok {
		return fmt.Sprintf(tpl, color), true
	}
	return "", false
}

// HexToManim renders a hex color as a quoted Manim color literal.
func HexToManim(hex string) string {
	return fmt.Sprintf("%q", hex)
}

// RGBToManim renders an RGB triple as a quoted Manim hex literal.
func RGBToManim(r, g, b uint8) string {
	return fmt.Sprintf("\"#%02x%02x%02x\"", r, g, b)
}
