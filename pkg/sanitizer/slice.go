package sanitizer

// NormalizeStringSlice maps every item through normalize and keeps the first
// occurrence of each non-empty result, preserving input order. The result is
// never nil.
func NormalizeStringSlice(items []string, normalize func(string) string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		n := normalize(item)
		if n == "" {
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

// NormalizeKeywords puts a symptom or keyword table into matching form, so
// "Chest Pain!" and "chest pain" collapse into one entry.
func NormalizeKeywords(keywords []string) []string {
	return NormalizeStringSlice(keywords, NormalizeKeyword)
}
