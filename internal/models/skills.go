package models

import "strings"

// NormalizeSkill folds a skill or subject name for comparison.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SkillSet is a normalized set of skill names.
type SkillSet map[string]struct{}

func NewSkillSet(skills []string) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		if n := NormalizeSkill(s); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (s SkillSet) Has(skill string) bool {
	_, ok := s[NormalizeSkill(skill)]
	return ok
}

// Missing returns the entries of required not in s, in their original spelling.
func (s SkillSet) Missing(required []string) []string {
	var out []string
	for _, r := range required {
		if NormalizeSkill(r) == "" {
			continue
		}
		if !s.Has(r) {
			out = append(out, strings.TrimSpace(r))
		}
	}
	return out
}

// CountShared counts distinct entries of skills that are also in s.
func (s SkillSet) CountShared(skills []string) int {
	return len(s.Intersect(skills))
}

// Intersect returns the distinct normalized entries of skills present in s.
func (s SkillSet) Intersect(skills []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, sk := range skills {
		n := NormalizeSkill(sk)
		if _, ok := s[n]; !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
