package pipeline

// directives are the two independent generation knobs a UI style maps to.
// Terseness controls answer length, personality controls voice; either may
// be empty.
type directives struct {
	terseness   string // "short", "detailed", or ""
	personality string // "friendly", "academic", or ""
}

// styleTable is the fixed UI-style → directives lookup. Unknown styles
// degrade to no directives rather than erroring.
var styleTable = map[string]directives{
	"friendly": {personality: "friendly"},
	"formal":   {personality: "academic"},
	"concise":  {terseness: "short"},
	"detailed": {terseness: "detailed"},
}

func mapStyle(style string) directives {
	return styleTable[style]
}
