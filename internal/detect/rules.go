package detect

// Rules is the full rule set driving detection. Rule sets are configuration:
// lore.yml may replace any of the three lists, and the defaults below apply
// when it does not.
type Rules struct {
	Languages    []LanguageRule    `yaml:"languages"`
	Frameworks   []FrameworkRule   `yaml:"frameworks"`
	ProjectTypes []ProjectTypeRule `yaml:"project_types"`
}

// LanguageRule scores one programming language. Marker files at the tree
// root contribute the full priority weight each; the presence of at least
// one listed extension anywhere under the tree contributes half weight.
type LanguageRule struct {
	Name       string   `yaml:"name"`
	Markers    []string `yaml:"markers"`
	Extensions []string `yaml:"extensions"`
	Priority   int      `yaml:"priority"`
}

// FrameworkRule scores one framework. When DependencyHints is non-empty, a
// marker file only awards its weight if its content mentions one of the
// hints (case-insensitive). Marker directories award half weight
// unconditionally.
type FrameworkRule struct {
	Name            string   `yaml:"name"`
	Markers         []string `yaml:"markers"`
	DependencyHints []string `yaml:"dependency_hints"`
	MarkerDirs      []string `yaml:"marker_dirs"`
	Priority        int      `yaml:"priority"`
}

// ProjectTypeRule matches when at least two independent signals agree:
// detected framework membership, detected language membership, and the
// existence of a named directory. First matching rule wins.
type ProjectTypeRule struct {
	Name       string   `yaml:"name"`
	Frameworks []string `yaml:"frameworks"`
	Languages  []string `yaml:"languages"`
	Dirs       []string `yaml:"dirs"`
}

// DefaultRules returns the built-in detection rule sets.
func DefaultRules() Rules {
	return Rules{
		Languages: []LanguageRule{
			{Name: "go", Markers: []string{"go.mod", "go.sum"}, Extensions: []string{".go"}, Priority: 10},
			{Name: "rust", Markers: []string{"Cargo.toml", "Cargo.lock"}, Extensions: []string{".rs"}, Priority: 10},
			{Name: "python", Markers: []string{"pyproject.toml", "requirements.txt", "setup.py", "Pipfile"}, Extensions: []string{".py", ".pyi"}, Priority: 9},
			{Name: "typescript", Markers: []string{"tsconfig.json"}, Extensions: []string{".ts", ".tsx"}, Priority: 9},
			{Name: "javascript", Markers: []string{"package.json"}, Extensions: []string{".js", ".jsx", ".mjs"}, Priority: 6},
			{Name: "java", Markers: []string{"pom.xml", "build.gradle", "build.gradle.kts"}, Extensions: []string{".java", ".kt"}, Priority: 9},
			{Name: "ruby", Markers: []string{"Gemfile"}, Extensions: []string{".rb"}, Priority: 9},
		},
		Frameworks: []FrameworkRule{
			{Name: "next.js", Markers: []string{"next.config.js", "next.config.ts", "next.config.mjs"}, MarkerDirs: []string{".next"}, Priority: 10},
			{Name: "nuxt", Markers: []string{"nuxt.config.js", "nuxt.config.ts"}, Priority: 10},
			{Name: "remix", Markers: []string{"remix.config.js"}, Priority: 10},
			{Name: "vite", Markers: []string{"vite.config.js", "vite.config.ts"}, Priority: 8},
			{Name: "react", Markers: []string{"package.json"}, DependencyHints: []string{"\"react\""}, Priority: 7},
			{Name: "vue", Markers: []string{"package.json"}, DependencyHints: []string{"\"vue\""}, Priority: 7},
			{Name: "django", Markers: []string{"manage.py"}, DependencyHints: nil, MarkerDirs: nil, Priority: 10},
			{Name: "fastapi", Markers: []string{"requirements.txt", "pyproject.toml"}, DependencyHints: []string{"fastapi"}, Priority: 9},
			{Name: "flask", Markers: []string{"requirements.txt", "pyproject.toml"}, DependencyHints: []string{"flask"}, Priority: 8},
			{Name: "rails", Markers: []string{"Gemfile"}, DependencyHints: []string{"rails"}, MarkerDirs: []string{"app/controllers"}, Priority: 10},
			{Name: "gin", Markers: []string{"go.mod"}, DependencyHints: []string{"gin-gonic/gin"}, Priority: 9},
			{Name: "spring", Markers: []string{"pom.xml", "build.gradle"}, DependencyHints: []string{"springframework"}, Priority: 9},
		},
		ProjectTypes: []ProjectTypeRule{
			{Name: "web_backend", Frameworks: []string{"django", "fastapi", "flask", "rails", "gin", "spring"}, Languages: []string{"python", "ruby", "go", "java"}, Dirs: []string{"api", "server"}},
			{Name: "web_frontend", Frameworks: []string{"react", "vue", "next.js", "nuxt", "remix", "vite"}, Languages: []string{"typescript", "javascript"}, Dirs: []string{"src/components", "public"}},
			{Name: "cli_tool", Frameworks: nil, Languages: []string{"go", "rust"}, Dirs: []string{"cmd"}},
			{Name: "library", Frameworks: nil, Languages: []string{"go", "rust", "python", "typescript"}, Dirs: []string{"pkg", "lib"}},
		},
	}
}
