package tokenize

import "strings"

// stem implements the Porter stemming algorithm (Porter, 1980) for English.
// No third-party Go stemmer exists anywhere in the dependency pack this
// module was grounded on, so the algorithm is reproduced here by hand; see
// DESIGN.md for the stdlib-only justification.
func stem(word string) string {
	w := []byte(word)
	if len(w) <= 2 {
		return string(w)
	}

	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return string(w)
}

// isVowel reports whether the letter at i is a vowel under Porter's
// definition: a, e, i, o, u are always vowels; y is a vowel only when
// preceded by a consonant (and is itself a consonant at word-start or when
// preceded by a vowel).
func isVowel(w []byte, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	case 'y':
		if i == 0 {
			return false
		}
		return isConsonant(w, i-1)
	}
	return false
}

func isConsonant(w []byte, i int) bool {
	return !isVowel(w, i)
}

// measure computes Porter's m: the number of VC sequences in the word
// treated as [C](VC)^m[V].
func measure(w []byte) int {
	n := len(w)
	i := 0
	for i < n && isConsonant(w, i) {
		i++
	}
	m := 0
	for i < n {
		for i < n && isVowel(w, i) {
			i++
		}
		if i >= n {
			break
		}
		for i < n && isConsonant(w, i) {
			i++
		}
		m++
	}
	return m
}

func containsVowel(w []byte) bool {
	for i := range w {
		if isVowel(w, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(w []byte) bool {
	n := len(w)
	if n < 2 {
		return false
	}
	if w[n-1] != w[n-2] {
		return false
	}
	return isConsonant(w, n-1)
}

func cvc(w []byte) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if !isConsonant(w, n-3) || !isVowel(w, n-2) || !isConsonant(w, n-1) {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func hasSuffix(w []byte, suf string) bool {
	return len(w) >= len(suf) && string(w[len(w)-len(suf):]) == suf
}

func trimSuffix(w []byte, n int) []byte {
	return w[:len(w)-n]
}

func replaceSuffix(w []byte, suf, repl string) []byte {
	base := trimSuffix(w, len(suf))
	return append(base, []byte(repl)...)
}

func step1a(w []byte) []byte {
	switch {
	case hasSuffix(w, "sses"):
		return replaceSuffix(w, "sses", "ss")
	case hasSuffix(w, "ies"):
		return replaceSuffix(w, "ies", "i")
	case hasSuffix(w, "ss"):
		return w
	case hasSuffix(w, "s") && len(w) > 1:
		return replaceSuffix(w, "s", "")
	}
	return w
}

func step1b(w []byte) []byte {
	switch {
	case hasSuffix(w, "eed"):
		if measure(trimSuffix(w, 3)) > 0 {
			return replaceSuffix(w, "eed", "ee")
		}
		return w
	case hasSuffix(w, "ed") && containsVowel(trimSuffix(w, 2)):
		w = trimSuffix(w, 2)
		return step1bFixup(w)
	case hasSuffix(w, "ing") && containsVowel(trimSuffix(w, 3)):
		w = trimSuffix(w, 3)
		return step1bFixup(w)
	}
	return w
}

func step1bFixup(w []byte) []byte {
	switch {
	case hasSuffix(w, "at"), hasSuffix(w, "bl"), hasSuffix(w, "iz"):
		return append(w, 'e')
	case endsDoubleConsonant(w) && w[len(w)-1] != 'l' && w[len(w)-1] != 's' && w[len(w)-1] != 'z':
		return trimSuffix(w, 1)
	case measure(w) == 1 && cvc(w):
		return append(w, 'e')
	}
	return w
}

func step1c(w []byte) []byte {
	if hasSuffix(w, "y") && containsVowel(trimSuffix(w, 1)) {
		return replaceSuffix(w, "y", "i")
	}
	return w
}

var step2Rules = []struct{ suf, repl string }{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
	{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
	{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
	{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
	{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
}

func step2(w []byte) []byte {
	for _, r := range step2Rules {
		if hasSuffix(w, r.suf) {
			stemPart := trimSuffix(w, len(r.suf))
			if measure(stemPart) > 0 {
				return append(append([]byte{}, stemPart...), []byte(r.repl)...)
			}
			return w
		}
	}
	return w
}

var step3Rules = []struct{ suf, repl string }{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

func step3(w []byte) []byte {
	for _, r := range step3Rules {
		if hasSuffix(w, r.suf) {
			stemPart := trimSuffix(w, len(r.suf))
			if measure(stemPart) > 0 {
				return append(append([]byte{}, stemPart...), []byte(r.repl)...)
			}
			return w
		}
	}
	return w
}

var step4Suffixes = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement", "ment",
	"ent", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
}

func step4(w []byte) []byte {
	if hasSuffix(w, "ion") {
		stemPart := trimSuffix(w, 3)
		if measure(stemPart) > 1 && len(stemPart) > 0 {
			last := stemPart[len(stemPart)-1]
			if last == 's' || last == 't' {
				return stemPart
			}
		}
	}
	for _, suf := range step4Suffixes {
		if hasSuffix(w, suf) {
			stemPart := trimSuffix(w, len(suf))
			if measure(stemPart) > 1 {
				return stemPart
			}
			return w
		}
	}
	return w
}

func step5a(w []byte) []byte {
	if !hasSuffix(w, "e") {
		return w
	}
	stemPart := trimSuffix(w, 1)
	m := measure(stemPart)
	if m > 1 || (m == 1 && !cvc(stemPart)) {
		return stemPart
	}
	return w
}

func step5b(w []byte) []byte {
	if measure(w) > 1 && endsDoubleConsonant(w) && strings.HasSuffix(string(w), "l") {
		return trimSuffix(w, 1)
	}
	return w
}
