// Package encounter builds the enemy roster of a combat chapter from its text.
// The same chapter always yields the same enemies.
package encounter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// MaxEnemies caps the size of a generated roster
const MaxEnemies = 6

// Generator produces the enemies for a combat chapter
type Generator interface {
	Generate(chapter *models.Chapter) []*models.Enemy
}

type template struct {
	kind           string
	name           string
	hp             int
	ac             int
	attackModifier int
	damageDie      int
	// solitary monsters never come in groups
	solitary bool
}

var templates = []template{
	{kind: "dragon", name: "Dragon", hp: 30, ac: 15, attackModifier: 5, damageDie: 10, solitary: true},
	{kind: "troll", name: "Troll", hp: 18, ac: 13, attackModifier: 4, damageDie: 8},
	{kind: "orc", name: "Orc", hp: 12, ac: 13, attackModifier: 3, damageDie: 8},
	{kind: "skeleton", name: "Skeleton", hp: 10, ac: 12, attackModifier: 2, damageDie: 6},
	{kind: "bandit", name: "Bandit", hp: 9, ac: 12, attackModifier: 2, damageDie: 6},
	{kind: "wolf", name: "Wolf", hp: 8, ac: 12, attackModifier: 2, damageDie: 6},
	{kind: "goblin", name: "Goblin", hp: 7, ac: 12, attackModifier: 2, damageDie: 6},
}

// fallback is used when the text mentions no known monster
var fallback = template{kind: "shadow", name: "Shadow Beast", hp: 8, ac: 11, attackModifier: 1, damageDie: 6}

type keyword struct {
	index  int
	plural bool
}

// keywords maps a word to its template and whether the word is plural
var keywords = map[string]keyword{}

var countWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "single": 1, "lone": 1,
	"two": 2, "pair": 2, "couple": 2,
	"three": 3, "several": 3, "few": 3,
	"four": 4, "pack": 4, "band": 4,
	"five": 5, "horde": 6, "six": 6,
}

func init() {
	plurals := map[string]string{"wolf": "wolves"}
	for i, t := range templates {
		keywords[t.kind] = keyword{index: i}
		plural, ok := plurals[t.kind]
		if !ok {
			plural = t.kind + "s"
		}
		keywords[plural] = keyword{index: i, plural: true}
	}
}

// precedingCount reads a count word just before words[i], looking through "of"
// so that "a horde of orcs" counts as a horde.
func precedingCount(words []string, i int) (int, bool) {
	j := i - 1
	if j > 0 && words[j] == "of" {
		j--
	}
	if j < 0 {
		return 0, false
	}
	n, ok := countWords[words[j]]
	return n, ok
}

type keywordGenerator struct{}

// New returns the keyword-driven generator
func New() Generator {
	return &keywordGenerator{}
}

// Generate scans the chapter text for monster words. A count word right before the
// monster ("three goblins") sets the group size; a bare plural means two.
func (g *keywordGenerator) Generate(chapter *models.Chapter) []*models.Enemy {
	if chapter == nil {
		return nil
	}

	words := strings.FieldsFunc(strings.ToLower(chapter.Title+" "+chapter.Text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	type group struct {
		t     template
		count int
	}
	groups := []group{}
	seen := map[string]bool{}

	for i, w := range words {
		kw, ok := keywords[w]
		if !ok {
			continue
		}
		t := templates[kw.index]
		if seen[t.kind] {
			continue
		}
		seen[t.kind] = true

		count := 1
		if kw.plural {
			count = 2
		}
		if n, ok := precedingCount(words, i); ok && (kw.plural || n == 1) {
			count = n
		}
		if t.solitary {
			count = 1
		}
		groups = append(groups, group{t: t, count: count})
	}

	if len(groups) == 0 {
		groups = append(groups, group{t: fallback, count: 1})
	}

	enemies := make([]*models.Enemy, 0, MaxEnemies)
	for _, gr := range groups {
		for n := 1; n <= gr.count && len(enemies) < MaxEnemies; n++ {
			name := gr.t.name
			if gr.count > 1 {
				name = fmt.Sprintf("%s %d", gr.t.name, n)
			}
			enemies = append(enemies, &models.Enemy{
				ID:             fmt.Sprintf("%s-%d", gr.t.kind, n),
				Name:           name,
				HP:             gr.t.hp,
				MaxHP:          gr.t.hp,
				AC:             gr.t.ac,
				AttackModifier: gr.t.attackModifier,
				DamageDie:      gr.t.damageDie,
			})
		}
	}

	return enemies
}
