package pyparse

// ParsedFile is the complete extraction result for one Python source file.
type ParsedFile struct {
	Entities     []ParsedEntity
	Imports      []ImportDirective
	Exports      *ModuleExports
	Calls        []CallRef
	BaseClasses  []BaseClassRef
	Decorators   []DecoratorRef
	UsedFallback bool // true if the full grammar could not parse the file
}

// ParseSource parses source with the real grammar when available, falling
// back to the best-effort scanners on parse failure (spec.md §4.2). Callers
// only need this entry point; Parser/Tree stay internal plumbing.
func ParseSource(source []byte) ParsedFile {
	parser, err := NewParser()
	if err != nil {
		return fallbackParse(source)
	}
	tree, err := parser.Parse(source)
	if err != nil {
		return fallbackParse(source)
	}

	calls, bases, decorators := CollectBehaviorRefs(tree)
	return ParsedFile{
		Entities:     CollectEntities(tree),
		Imports:      CollectImports(tree),
		Exports:      CollectExports(tree),
		Calls:        calls,
		BaseClasses:  bases,
		Decorators:   decorators,
		UsedFallback: !hasBehaviorSupport,
	}
}

func fallbackParse(source []byte) ParsedFile {
	return ParsedFile{
		Entities:     FallbackEntities(source),
		Imports:      FallbackImports(source),
		Exports:      FallbackExports(source),
		UsedFallback: true,
	}
}
