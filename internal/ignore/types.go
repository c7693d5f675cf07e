package ignore

import (
	"sync"

	"github.com/bethropolis/rr/internal/utils"
	gitignore "github.com/denormal/go-gitignore"
)

// RuleSet holds the merged exclusion rules of one run. It is read-only once
// Load returns and is safe for concurrent use.
type RuleSet struct {
	rules   []rule
	sources []string

	// .gitignore support, nil unless enabled
	repoIgnore gitignore.GitIgnore
	repoMu     sync.Mutex

	// Configuration flags
	rootDir        string
	useGitignore   bool
	useDefaults    bool
	customPatterns []string
	logger         utils.Logger
}

// rule is one compiled line of an ignore source
type rule struct {
	pattern  string // doublestar pattern, slashes trimmed
	raw      string // the line as written
	source   string
	line     int
	anchored bool // matched against the whole relative path
	dirOnly  bool // trailing slash: directories only
}
