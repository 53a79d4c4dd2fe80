package domain

import (
	"regexp"
	"slices"
	"strings"
)

// Signals are the contract and behavior markers extracted from one version of a file.
type Signals struct {
	Imports  []string
	Exports  []string
	Semantic []string
}

var (
	importPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bimport\s+(?:[\w$*{}\s,]+?\s+from\s+)?['"]([^'"]+)['"]`),
		regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"]+)['"]\s*\)`),
		regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]\s*\)`),
		regexp.MustCompile(`\bexport\s+(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s+from\s+['"]([^'"]+)['"]`),
	}

	exportDeclPattern = regexp.MustCompile(
		`\bexport\s+(?:default\s+)?(?:async\s+)?(?:function\s*\*?|class|const|let|var)\s*([A-Za-z_$][\w$]*)`)
	exportDefaultPattern = regexp.MustCompile(`\bexport\s+default\b`)
	exportListPattern    = regexp.MustCompile(`\bexport\s*\{([^}]*)\}`)
	exportStarPattern    = regexp.MustCompile(`\bexport\s+\*\s+from\s+['"]([^'"]+)['"]`)
	moduleExportsPattern = regexp.MustCompile(`\bmodule\.exports\s*=`)
	namedExportsPattern  = regexp.MustCompile(`\b(?:module\.)?exports\.([A-Za-z_$][\w$]*)\s*=`)

	storagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:localStorage|sessionStorage)\.(?:getItem|setItem|removeItem)\(\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`\bstorage\.(?:local|sync|session)\.(?:get|set|remove)\(\s*['"]([^'"]+)['"]`),
	}
	eventPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.(?:addEventListener|removeEventListener|on|once|off|emit|trigger)\(\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`\bnew\s+(?:Custom)?Event\(\s*['"]([^'"]+)['"]`),
	}
	globalPattern = regexp.MustCompile(`\b(?:window|globalThis|self|global)\.([A-Za-z_$][\w$]*)`)
)

// DetectChangeType classifies the change from oldCode to newCode.
// A missing previous entry means the file is new, which is SEMANTIC.
// Checks run from contract to behavior to the STATIC catch-all.
func DetectChangeType(oldCode, newCode string, previous *CacheEntry) ChangeType {
	if previous == nil {
		return ChangeSemantic
	}

	oldNorm := NormalizeCode(oldCode)
	newNorm := NormalizeCode(newCode)
	if oldNorm == newNorm {
		return ChangeCosmetic
	}

	before := ExtractSignals(oldNorm)
	after := ExtractSignals(newNorm)

	if !slices.Equal(before.Imports, after.Imports) || !slices.Equal(before.Exports, after.Exports) {
		return ChangeCritical
	}
	if !slices.Equal(before.Semantic, after.Semantic) {
		return ChangeSemantic
	}
	return ChangeStatic
}

// ExtractSignals returns sorted, de-duplicated imports, exports and semantic markers.
// The input may be raw or normalized code.
func ExtractSignals(code string) Signals {
	var s Signals

	for _, re := range importPatterns {
		for _, m := range re.FindAllStringSubmatch(code, -1) {
			s.Imports = append(s.Imports, m[1])
		}
	}

	for _, m := range exportDeclPattern.FindAllStringSubmatch(code, -1) {
		s.Exports = append(s.Exports, m[1])
	}
	if exportDefaultPattern.MatchString(code) {
		s.Exports = append(s.Exports, "default")
	}
	for _, m := range exportListPattern.FindAllStringSubmatch(code, -1) {
		for _, item := range strings.Split(m[1], ",") {
			if name := exportedName(item); name != "" {
				s.Exports = append(s.Exports, name)
			}
		}
	}
	for _, m := range exportStarPattern.FindAllStringSubmatch(code, -1) {
		s.Exports = append(s.Exports, "*:"+m[1])
	}
	if moduleExportsPattern.MatchString(code) {
		s.Exports = append(s.Exports, "module.exports")
	}
	for _, m := range namedExportsPattern.FindAllStringSubmatch(code, -1) {
		s.Exports = append(s.Exports, m[1])
	}

	for _, re := range storagePatterns {
		for _, m := range re.FindAllStringSubmatch(code, -1) {
			s.Semantic = append(s.Semantic, "storage:"+m[1])
		}
	}
	for _, re := range eventPatterns {
		for _, m := range re.FindAllStringSubmatch(code, -1) {
			s.Semantic = append(s.Semantic, "event:"+m[1])
		}
	}
	for _, m := range globalPattern.FindAllStringSubmatch(code, -1) {
		s.Semantic = append(s.Semantic, "global:"+m[1])
	}

	s.Imports = sortedUnique(s.Imports)
	s.Exports = sortedUnique(s.Exports)
	s.Semantic = sortedUnique(s.Semantic)
	return s
}

// exportedName returns the public name of one item of an export list ("a as b" -> "b").
func exportedName(item string) string {
	fields := strings.Fields(item)
	switch {
	case len(fields) == 0:
		return ""
	case len(fields) >= 3 && fields[len(fields)-2] == "as":
		return fields[len(fields)-1]
	default:
		return fields[0]
	}
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	slices.Sort(in)
	return slices.Compact(in)
}

// NormalizeCode strips line and block comments outside string literals and
// collapses every run of whitespace outside them into a single space. Literal
// contents are kept byte for byte.
func NormalizeCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))

	var quote byte
	space := false
	emit := func(c byte) {
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteByte(c)
	}

	for i := 0; i < len(code); i++ {
		c := code[i]

		if quote != 0 {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(code) {
					i++
					b.WriteByte(code[i])
				}
			case quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
			emit(c)
		case c == '/' && i+1 < len(code) && code[i+1] == '/':
			for i+1 < len(code) && code[i+1] != '\n' {
				i++
			}
			space = true
		case c == '/' && i+1 < len(code) && code[i+1] == '*':
			end := strings.Index(code[i+2:], "*/")
			if end < 0 {
				i = len(code)
			} else {
				i += end + 3
			}
			space = true
		case isSpace(c):
			space = true
		default:
			emit(c)
		}
	}

	return b.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
