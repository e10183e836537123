package lang

import "regexp"

// defaultProfiles returns the built-in language profiles.
// Patterns are line heuristics, not grammars: they catch the common shapes
// of named definitions and accept misses. The chunker's fixed-size fallback
// covers anything they cannot see.
func defaultProfiles() []*Profile {
	return []*Profile{
		{
			Name:       "go",
			Extensions: []string{".go"},
			Signatures: compile(
				`^func\s+(?:\([^)]*\)\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*[(\[]`,
				`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s`,
			),
		},
		{
			Name:       "typescript",
			Extensions: []string{".ts", ".tsx"},
			Signatures: compile(
				`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)`,
				`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][A-Za-z0-9_$]*)\s*(?::\s*[^=]+)?=>`,
				`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`,
				`^\s*(?:export\s+)?interface\s+([A-Za-z_$][A-Za-z0-9_$]*)`,
				`^\s*(?:export\s+)?type\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`,
				`^\s*(?:public|private|protected|static)\s+(?:static\s+)?(?:async\s+)?([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`,
			),
		},
		{
			Name:       "javascript",
			Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			Signatures: compile(
				`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)`,
				`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][A-Za-z0-9_$]*)\s*=>`,
				`^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`,
			),
		},
		{
			Name:       "python",
			Extensions: []string{".py"},
			Signatures: compile(
				`^\s*(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`,
				`^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(:]`,
			),
		},
		{
			Name:       "ruby",
			Extensions: []string{".rb"},
			Signatures: compile(
				`^\s*def\s+(?:self\.)?([A-Za-z_][A-Za-z0-9_]*[?!=]?)`,
				`^\s*(?:class|module)\s+([A-Z][A-Za-z0-9_]*)`,
			),
		},
		{
			Name:       "rust",
			Extensions: []string{".rs"},
			Signatures: compile(
				`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)`,
				`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`,
				`^\s*impl\b`,
			),
		},
		{
			Name:       "java",
			Extensions: []string{".java"},
			Signatures: compile(
				`^\s*(?:public\s+|private\s+|protected\s+|abstract\s+|final\s+|static\s+)*(?:class|interface|enum|record)\s+([A-Za-z_][A-Za-z0-9_]*)`,
				`^\s*(?:public|private|protected)\s+(?:static\s+|final\s+|abstract\s+|synchronized\s+)*[\w<>\[\],.\s]+\s([A-Za-z_][A-Za-z0-9_]*)\s*\(`,
			),
		},
		{
			Name:       "csharp",
			Extensions: []string{".cs"},
			Signatures: compile(
				`^\s*(?:public\s+|private\s+|protected\s+|internal\s+|abstract\s+|sealed\s+|static\s+|partial\s+)*(?:class|interface|struct|enum|record)\s+([A-Za-z_][A-Za-z0-9_]*)`,
				`^\s*(?:public|private|protected|internal)\s+(?:static\s+|virtual\s+|override\s+|async\s+|sealed\s+)*[\w<>\[\],.\s?]+\s([A-Za-z_][A-Za-z0-9_]*)\s*\(`,
			),
		},
		{
			Name:       "c",
			Extensions: []string{".c", ".h"},
			Signatures: compile(
				`^(?:static\s+|inline\s+|extern\s+)*[A-Za-z_][\w\s\*]*?\b([A-Za-z_][A-Za-z0-9_]*)\s*\([^;]*$`,
				`^\s*(?:typedef\s+)?(?:struct|union|enum)\s+([A-Za-z_][A-Za-z0-9_]*)`,
			),
		},
		{
			Name:       "cpp",
			Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
			Signatures: compile(
				`^\s*(?:class|struct)\s+([A-Za-z_][A-Za-z0-9_]*)`,
				`^(?:static\s+|inline\s+|virtual\s+|constexpr\s+)*[A-Za-z_][\w:\s\*&<>,]*?\b([A-Za-z_][A-Za-z0-9_~]*)\s*\([^;]*$`,
			),
		},
		{
			Name:       "php",
			Extensions: []string{".php"},
			Signatures: compile(
				`^\s*(?:public\s+|private\s+|protected\s+|static\s+|abstract\s+|final\s+)*function\s+([A-Za-z_][A-Za-z0-9_]*)`,
				`^\s*(?:abstract\s+|final\s+)?(?:class|interface|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`,
			),
		},
		{
			Name:       "shell",
			Extensions: []string{".sh", ".bash"},
			Signatures: compile(
				`^\s*(?:function\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(\)\s*\{?`,
			),
		},
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}
