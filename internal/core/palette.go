package core

// Accent is a display color assigned to an author.
type Accent struct {
	Name string
	ANSI string // SGR parameter, e.g. "36" for cyan
}

// DefaultPalette is the fixed accent list authors are assigned from.
var DefaultPalette = []Accent{
	{Name: "cyan", ANSI: "36"},
	{Name: "magenta", ANSI: "35"},
	{Name: "yellow", ANSI: "33"},
	{Name: "green", ANSI: "32"},
	{Name: "blue", ANSI: "34"},
	{Name: "red", ANSI: "31"},
}

// AssignColors maps every author in msgs to an accent, in first-seen order,
// cycling through palette when it runs out.
func AssignColors(msgs []Message, palette []Accent) map[string]Accent {
	colors := make(map[string]Accent)
	if len(palette) == 0 {
		return colors
	}
	for _, m := range msgs {
		if _, ok := colors[m.Author]; ok {
			continue
		}
		colors[m.Author] = palette[len(colors)%len(palette)]
	}
	return colors
}
