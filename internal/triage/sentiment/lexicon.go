package sentiment

// valence scores on a -4..4 scale.
var defaultLexicon = map[string]float64{
	"afraid":     -2.0,
	"ache":       -1.6,
	"aching":     -1.6,
	"agony":      -3.0,
	"anxious":    -1.0,
	"awful":      -2.0,
	"bad":        -2.5,
	"bleeding":   -1.5,
	"cry":        -2.1,
	"crying":     -2.1,
	"crushing":   -1.5,
	"dead":       -3.3,
	"death":      -2.9,
	"depressed":  -2.3,
	"die":        -2.9,
	"dying":      -2.9,
	"emergency":  -1.6,
	"exhausted":  -1.5,
	"fear":       -2.2,
	"frightened": -1.9,
	"hate":       -2.7,
	"horrible":   -2.5,
	"hurt":       -2.4,
	"hurts":      -2.2,
	"ill":        -1.8,
	"lonely":     -1.5,
	"miserable":  -2.2,
	"nervous":    -1.2,
	"pain":       -2.3,
	"painful":    -1.9,
	"panic":      -2.3,
	"sad":        -2.1,
	"scared":     -2.2,
	"severe":     -1.6,
	"sick":       -2.0,
	"stressed":   -1.8,
	"suffering":  -2.1,
	"terrible":   -2.1,
	"terrified":  -3.0,
	"tired":      -1.9,
	"unbearable": -2.2,
	"upset":      -1.6,
	"weak":       -1.9,
	"worried":    -1.2,
	"worse":      -2.1,
	"worst":      -3.1,
	"worry":      -1.9,

	"better":    1.9,
	"calm":      1.3,
	"excellent": 2.7,
	"fine":      0.8,
	"glad":      2.0,
	"good":      1.9,
	"great":     3.1,
	"happy":     2.7,
	"help":      1.7,
	"hope":      1.9,
	"love":      3.2,
	"nice":      1.8,
	"ok":        1.2,
	"okay":      0.9,
	"relieved":  1.5,
	"thank":     1.5,
	"thanks":    1.9,
	"well":      1.1,
	"wonderful": 2.7,
}

var boosters = map[string]float64{
	"very":       0.293,
	"really":     0.293,
	"extremely":  0.293,
	"so":         0.293,
	"incredibly": 0.293,
	"totally":    0.293,
	"slightly":   -0.293,
	"somewhat":   -0.293,
	"barely":     -0.293,
	"little":     -0.293,
}

var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"nor":     true,
	"without": true,
	"don't":   true,
	"dont":    true,
	"can't":   true,
	"cannot":  true,
	"isn't":   true,
	"won't":   true,
	"doesn't": true,
	"didn't":  true,
	"wasn't":  true,
	"aren't":  true,
}

var defaultPanicKeywords = []string{
	"emergency",
	"severe",
	"can't breathe",
	"dying",
	"help",
	"unbearable",
	"crushing",
	"stroke",
	"heart attack",
	"bleeding",
}
