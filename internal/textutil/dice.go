package textutil

// DiceSimilarity compares two strings by the Dice coefficient of their
// padded trigram sets, in [0, 1]. Both inputs pass through SimilarityKey
// first. Equal keys score 1; a key shorter than two runes scores 0.
func DiceSimilarity(a, b string) float64 {
	ka := SimilarityKey(a)
	kb := SimilarityKey(b)
	if len([]rune(ka)) < 2 || len([]rune(kb)) < 2 {
		return 0
	}
	if ka == kb {
		return 1
	}
	ta := trigrams(ka)
	tb := trigrams(kb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for gram := range ta {
		if _, ok := tb[gram]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

// trigrams returns the set of overlapping three-rune windows of key padded
// with two leading spaces and one trailing space.
func trigrams(key string) map[string]struct{} {
	padded := []rune("  " + key + " ")
	set := make(map[string]struct{}, len(padded))
	for i := 0; i+3 <= len(padded); i++ {
		set[string(padded[i:i+3])] = struct{}{}
	}
	return set
}
