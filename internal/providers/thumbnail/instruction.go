package thumbnail

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// BuildInstruction composes the natural-language directive sent alongside the
// source photo. The title is rendered uppercased inside the artwork.
func BuildInstruction(title string) string {
	parts := []string{
		"Create a professional 3D YouTube thumbnail.",
		"Use the person from this photo as the main subject.",
		fmt.Sprintf("Add vibrant, glowing 3D text that says: %q.", upper.String(strings.TrimSpace(title))),
		"The background should be colorful, high-contrast, and ultra-high-definition cinematic style.",
		"Make it look viral and professional with lens flares and depth of field.",
	}
	return strings.Join(parts, " ")
}
