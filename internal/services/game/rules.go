package game

import (
	"strings"

	"github.com/KirkDiggler/taleforge/internal/models"
)

const (
	baseHP = 10
	baseAC = 10

	// reviveTarget is the 2d10 total a revive needs
	reviveTarget = 11

	fumbleDie = 4
	d20       = 20
	d10       = 10
)

// classProfile describes how a class fights
type classProfile struct {
	// finesse classes attack with DEX instead of STR
	finesse   bool
	damageDie int
}

var classProfiles = map[string]classProfile{
	"barbarian": {damageDie: 12},
	"fighter":   {damageDie: 10},
	"paladin":   {damageDie: 10},
	"ranger":    {finesse: true, damageDie: 8},
	"monk":      {finesse: true, damageDie: 8},
	"cleric":    {damageDie: 8},
	"rogue":     {finesse: true, damageDie: 6},
	"bard":      {finesse: true, damageDie: 6},
	"druid":     {damageDie: 6},
	"warlock":   {damageDie: 6},
	"sorcerer":  {damageDie: 4},
	"wizard":    {damageDie: 4},
}

var defaultProfile = classProfile{damageDie: 6}

func profileFor(class string) classProfile {
	if p, ok := classProfiles[strings.ToLower(strings.TrimSpace(class))]; ok {
		return p
	}
	return defaultProfile
}

// newCombatParticipant derives a combat sheet from a character
func newCombatParticipant(character *models.Character) *models.CombatParticipant {
	attrs := character.Attributes
	profile := profileFor(character.Class)

	maxHP := baseHP + models.Modifier(attrs.Constitution)
	if maxHP < 1 {
		maxHP = 1
	}

	dexMod := models.Modifier(attrs.Dexterity)
	attackMod := models.Modifier(attrs.Strength)
	if profile.finesse {
		attackMod = dexMod
	}

	return &models.CombatParticipant{
		CharacterID:    character.ID,
		UserID:         character.UserID,
		Name:           character.Name,
		Class:          character.Class,
		HP:             maxHP,
		MaxHP:          maxHP,
		AC:             baseAC + dexMod,
		AttackModifier: attackMod,
		DexModifier:    dexMod,
		DamageDie:      profile.damageDie,
	}
}
