package blank

import "regexp"

var (
	expectedSectionRe = regexp.MustCompile("(?i)###\\s+Expected\\s+(Class|Classes|Functions)\\s*\\n```java\\n([\\s\\S]*?)\\n```")

	protectedImportRe = regexp.MustCompile(`import\s+[\w.]+\.(\w+);`)
	methodSignatureRe = regexp.MustCompile(`(public|private|protected)\s+[\w<>,\[\]\s]+\s+(\w+)\s*\([^)]*\)`)
	methodNameRe      = regexp.MustCompile(`\s+(\w+)\s*\(`)
	classNameRe       = regexp.MustCompile(`(public|private)?\s*class\s+(\w+)`)
)

// ProtectedSet holds identifiers that must never be blanked
type ProtectedSet map[string]struct{}

// NewProtectedSet builds a set from the given identifiers
func NewProtectedSet(ids ...string) ProtectedSet {
	s := make(ProtectedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is protected. A nil set protects nothing.
func (s ProtectedSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// ExtractProtected collects the contract identifiers an exercise README
// declares under "### Expected Class", "### Expected Classes" or
// "### Expected Functions" java code blocks: imported class names, method
// names of access-qualified signatures and declared class names.
//
// A README without such sections yields an empty set.
func ExtractProtected(specText string) ProtectedSet {
	protected := make(ProtectedSet)

	for _, section := range expectedSectionRe.FindAllStringSubmatch(specText, -1) {
		block := section[2]

		for _, m := range protectedImportRe.FindAllStringSubmatch(block, -1) {
			protected[m[1]] = struct{}{}
		}

		for _, sig := range methodSignatureRe.FindAllString(block, -1) {
			if name := methodNameRe.FindStringSubmatch(sig); name != nil {
				protected[name[1]] = struct{}{}
			}
		}

		for _, m := range classNameRe.FindAllStringSubmatch(block, -1) {
			protected[m[2]] = struct{}{}
		}
	}

	return protected
}
