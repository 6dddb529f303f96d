package worker

import (
	"strings"

	"github.com/dimfu/mrwordrank/shared"
)

// French function words that carry no meaning in a frequency ranking.
var defaultStopwords = []string{
	"le", "la", "les", "l", "de", "des", "du", "au", "aux", "ou", "où", "à", "et",
	"ne", "ni", "en", "pour", "par", "se", "dans", "est", "sont", "être", "si",
	"sa", "ses", "ce", "qu", "lorsqu", "lorsque", "je", "tu", "il", "ils",
	"elle", "elles", "nous", "vous", "lui", "leur", "leurs", "eux", "on",
	"celui", "celle", "ceux-là", "celui-ci", "celui-là", "celle-ci",
	"celle-là", "celles-ci", "celles-là", "ceci", "cela", "ça", "mien",
	"mienne", "miens", "miennes", "tien", "tienne", "tiens", "tiennes",
	"sien", "sienne", "siens", "siennes", "nôtre", "nôtres", "vôtre",
	"vôtres", "personne", "rien", "aucun", "aucune", "nul", "nulle", "un",
	"une", "autre", "pas", "tout", "tous", "quelqu", "quelque", "certain",
	"certaine", "certains", "certaines", "plusieurs", "qui", "que", "quoi",
	"dont", "lequel", "laquelle", "duquel", "auquel", "lesquels", "desquels",
	"lesquelles", "desquelles", "auxquelles", "ii", "iii", "ier",
}

func DefaultStopwords() map[string]struct{} {
	return NewStopwords(defaultStopwords)
}

func NewStopwords(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// LoadStopwords reads one stopword per line.
func LoadStopwords(p string) (map[string]struct{}, error) {
	lines, err := shared.ReadLines(p)
	if err != nil {
		return nil, err
	}
	return NewStopwords(lines), nil
}
