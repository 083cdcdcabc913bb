package router

import "regexp"

// Heuristic classification is an ordered list of declarative predicate
// rules evaluated data-first. The ladder is strict priority: project
// ownership, then framework vocabulary, then language syntax, then
// universal best-practice markers, then the configured default. Framework
// and language vocabularies only ever match the *currently detected*
// framework/language - content full of React idioms never routes to the
// react collection while the session is in a Django project.

// ownershipMarkers indicate a lesson tied to one specific codebase.
var ownershipMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcustom\b`),
	regexp.MustCompile(`(?i)\binternal\b`),
	regexp.MustCompile(`(?i)\bour\b`),
	regexp.MustCompile(`(?i)\bproject-specific\b`),
	regexp.MustCompile(`(?i)\bthis codebase\b`),
	regexp.MustCompile(`(?i)\binternal library\b`),
}

// universalMarkers indicate generic, stack-independent best practice.
var universalMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\balways\b`),
	regexp.MustCompile(`(?i)\bnever\b`),
	regexp.MustCompile(`(?i)\bbefore committing\b`),
	regexp.MustCompile(`(?i)\bbest practice\b`),
	regexp.MustCompile(`(?i)\bframework-agnostic\b`),
	regexp.MustCompile(`(?i)\bregardless of (the )?(language|framework|stack)\b`),
	regexp.MustCompile(`(?i)\bin any project\b`),
	regexp.MustCompile(`(?i)\bcode review\b`),
}

// frameworkVocabulary maps a framework name to syntax and vocabulary
// patterns characteristic of it.
var frameworkVocabulary = map[string][]*regexp.Regexp{
	"react": {
		regexp.MustCompile(`\buse(State|Effect|Memo|Callback|Ref|Context|Reducer)\b`),
		regexp.MustCompile(`(?i)\bjsx\b`),
		regexp.MustCompile(`(?i)\breact\b`),
		regexp.MustCompile(`<[A-Z]\w+(\s|/?>)`),
	},
	"next.js": {
		regexp.MustCompile(`(?i)\bnext\.js\b`),
		regexp.MustCompile(`\bget(ServerSideProps|StaticProps|StaticPaths)\b`),
		regexp.MustCompile(`(?i)\bapp router\b`),
		regexp.MustCompile(`(?i)\bnext\.config\b`),
	},
	"vue": {
		regexp.MustCompile(`\bv-(if|for|model|bind|on|show)\b`),
		regexp.MustCompile(`(?i)\bvue\b`),
		regexp.MustCompile(`(?i)\bcomposition api\b`),
	},
	"django": {
		regexp.MustCompile(`(?i)\bdjango\b`),
		regexp.MustCompile(`\b(models|views|urls|settings|admin)\.py\b`),
		regexp.MustCompile(`(?i)\bqueryset\b`),
		regexp.MustCompile(`(?i)\bmigrations?\b.*\bmanage\.py\b|\bmanage\.py\b`),
	},
	"fastapi": {
		regexp.MustCompile(`(?i)\bfastapi\b`),
		regexp.MustCompile(`@app\.(get|post|put|delete|patch)\b`),
		regexp.MustCompile(`(?i)\bpydantic\b`),
		regexp.MustCompile(`\bDepends\(`),
	},
	"flask": {
		regexp.MustCompile(`(?i)\bflask\b`),
		regexp.MustCompile(`@app\.route\b`),
		regexp.MustCompile(`\bblueprints?\b`),
	},
	"rails": {
		regexp.MustCompile(`(?i)\brails\b`),
		regexp.MustCompile(`(?i)\bactiverecord\b`),
		regexp.MustCompile(`(?i)\berb templates?\b`),
	},
	"gin": {
		regexp.MustCompile(`\bgin\.(Context|Engine|Default)\b`),
		regexp.MustCompile(`(?i)\bgin router\b`),
	},
	"spring": {
		regexp.MustCompile(`(?i)\bspring( boot)?\b`),
		regexp.MustCompile(`@(Autowired|RestController|Service|Repository|Component)\b`),
	},
}

// languageVocabulary maps a language name to characteristic syntax
// patterns.
var languageVocabulary = map[string][]*regexp.Regexp{
	"python": {
		regexp.MustCompile(`(?i)\bpython\b`),
		regexp.MustCompile(`\bdef \w+\(`),
		regexp.MustCompile(`\b__\w+__\b`),
		regexp.MustCompile(`(?i)\b(pip|pytest|virtualenv|venv)\b`),
		regexp.MustCompile(`\bself\.\w+`),
	},
	"go": {
		regexp.MustCompile(`(?i)\bgolang\b|\bgo\.(mod|sum)\b`),
		regexp.MustCompile(`\bgoroutines?\b`),
		regexp.MustCompile(`\bgo (test|build|vet|fmt|run)\b`),
		regexp.MustCompile(`:=`),
		regexp.MustCompile(`\bfunc \w+\(`),
	},
	"typescript": {
		regexp.MustCompile(`(?i)\btypescript\b|\btsconfig\b`),
		regexp.MustCompile(`\binterface \w+ \{`),
		regexp.MustCompile(`: (string|number|boolean)\b`),
		regexp.MustCompile(`(?i)\btype guards?\b`),
	},
	"javascript": {
		regexp.MustCompile(`(?i)\bjavascript\b|\bnode\.js\b`),
		regexp.MustCompile(`\b(const|let) \w+ =`),
		regexp.MustCompile(`\basync/await\b|\bPromise\b`),
	},
	"rust": {
		regexp.MustCompile(`(?i)\brust\b|\bcargo\b`),
		regexp.MustCompile(`\b(borrow(ing)?|lifetimes?|&mut)\b`),
		regexp.MustCompile(`\bRust's\b|\bunwrap\(\)`),
	},
	"java": {
		regexp.MustCompile(`(?i)\bjava\b|\bmaven\b|\bgradle\b`),
		regexp.MustCompile(`@Override\b`),
		regexp.MustCompile(`\bpublic (static )?(void|class)\b`),
	},
	"ruby": {
		regexp.MustCompile(`(?i)\bruby\b|\bbundler?\b|\bgemfile\b`),
		regexp.MustCompile(`\bend\b.*\bdo\b|\bdo \|\w+\|`),
	},
}

func matchesAny(patterns []*regexp.Regexp, content string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}
