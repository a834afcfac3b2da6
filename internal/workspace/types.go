// Package workspace analyzes a project directory and produces a short
// brief the agent can load into its system prompt. The brief is persisted
// as TARAGENT.md in the project root so users can review and edit it.
package workspace

// ContextFileName is the project context file read at session start and
// written by the /init command.
const ContextFileName = "TARAGENT.md"

// Brief is a compact summary of a project directory.
type Brief struct {
	ProjectType  string
	ModuleName   string
	Languages    []Language
	KeyFiles     []string
	BuildTargets []string
	Git          *GitInfo
	FileCount    int
	DirCount     int
}

// Language is one language's share of the project, measured by file count.
type Language struct {
	Name    string
	Files   int
	Percent int
}

// GitInfo describes the state of the repository, if the directory is one.
type GitInfo struct {
	Branch     string
	Dirty      bool
	LastCommit string
}
