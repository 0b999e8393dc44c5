package exam

// Flatten turns a section- and passage-nested question tree into the
// single ordered sequence every downstream component indexes into.
// Passage containers contribute their nested questions, not themselves,
// so the result holds gradable questions only.
func Flatten(sections []Section) []Question {
	var out []Question
	for _, s := range sections {
		out = appendFlat(out, s.Questions)
	}
	return out
}

func appendFlat(dst []Question, qs []Question) []Question {
	for _, q := range qs {
		if q.Kind == KindPassage {
			dst = appendFlat(dst, q.Sub)
			continue
		}
		dst = append(dst, q)
	}
	return dst
}
