package types

import (
	"fmt"
	"sort"
	"strings"
)

// TypeTag is a category tag from the closed creature type vocabulary.
type TypeTag string

// Type vocabulary. The set is fixed; there is no runtime extension.
const (
	TypeNormal   TypeTag = "normal"
	TypeFire     TypeTag = "fire"
	TypeWater    TypeTag = "water"
	TypeElectric TypeTag = "electric"
	TypeGrass    TypeTag = "grass"
	TypeIce      TypeTag = "ice"
	TypeFighting TypeTag = "fighting"
	TypePoison   TypeTag = "poison"
	TypeGround   TypeTag = "ground"
	TypeFlying   TypeTag = "flying"
	TypePsychic  TypeTag = "psychic"
	TypeBug      TypeTag = "bug"
	TypeRock     TypeTag = "rock"
	TypeGhost    TypeTag = "ghost"
	TypeDragon   TypeTag = "dragon"
	TypeDark     TypeTag = "dark"
	TypeSteel    TypeTag = "steel"
	TypeFairy    TypeTag = "fairy"
)

// allTags lists the vocabulary in canonical order.
var allTags = []TypeTag{
	TypeNormal, TypeFire, TypeWater, TypeElectric, TypeGrass, TypeIce,
	TypeFighting, TypePoison, TypeGround, TypeFlying, TypePsychic, TypeBug,
	TypeRock, TypeGhost, TypeDragon, TypeDark, TypeSteel, TypeFairy,
}

// tagOrdinal maps each tag to its position in allTags.
var tagOrdinal = func() map[TypeTag]int {
	m := make(map[TypeTag]int, len(allTags))
	for i, t := range allTags {
		m[t] = i
	}
	return m
}()

// AllTags returns a copy of the vocabulary in canonical order.
func AllTags() []TypeTag {
	out := make([]TypeTag, len(allTags))
	copy(out, allTags)
	return out
}

// ParseTag normalizes tag and reports whether it belongs to the vocabulary.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseTag(tag string) (TypeTag, bool) {
	t := TypeTag(strings.ToLower(strings.TrimSpace(tag)))
	if _, ok := tagOrdinal[t]; !ok {
		return "", false
	}
	return t, true
}

// IsValidTag reports whether tag names a vocabulary entry.
func IsValidTag(tag string) bool {
	_, ok := ParseTag(tag)
	return ok
}

// NewTypeSet returns the distinct tags in canonical order.
func NewTypeSet(tags ...TypeTag) []TypeTag {
	seen := make(map[TypeTag]bool, len(tags))
	out := make([]TypeTag, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	SortTags(out)
	return out
}

// SortTags orders tags canonically in place. Unknown tags sort last,
// alphabetically.
func SortTags(tags []TypeTag) {
	sort.SliceStable(tags, func(i, j int) bool {
		oi, iok := tagOrdinal[tags[i]]
		oj, jok := tagOrdinal[tags[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return tags[i] < tags[j]
		}
	})
}

// ParseTags converts client-supplied tag names into a type set. Unlike
// seeding, which drops unknown tags, it fails with ErrUnknownType naming the
// first tag outside the vocabulary.
func ParseTags(names []string) ([]TypeTag, error) {
	tags := make([]TypeTag, 0, len(names))
	for _, n := range names {
		t, ok := ParseTag(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, n)
		}
		tags = append(tags, t)
	}
	return NewTypeSet(tags...), nil
}
