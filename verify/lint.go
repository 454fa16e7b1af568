package verify

import (
	"fmt"
	"strconv"
	"strings"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Construct nesting error (stray or missing end)
	IssueLabel  IssueType = "LABEL"  // Branch target or label declaration error
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType
	Line    int // 0-based index into the linted lines
	Text    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] line %d %q: %s", i.Type, i.Line, i.Text, i.Message)
}

type frame struct {
	kind  string
	label string
	line  int
}

// Lint checks the structured control flow of a function body given one
// instruction per line. Returns an empty list if the body is well formed.
func Lint(lines []string) []Issue {
	var (
		issues []Issue
		open   []frame
	)

	report := func(t IssueType, line int, format string, args ...any) {
		issues = append(issues, Issue{
			Type:    t,
			Line:    line,
			Text:    lines[line],
			Message: fmt.Sprintf(format, args...),
		})
	}

	for n, raw := range lines {
		op, arg, _ := strings.Cut(strings.TrimSpace(raw), " ")
		arg = strings.TrimSpace(arg)

		switch op {
		case "block", "loop", "if":
			label := ""
			if strings.HasPrefix(arg, "$") {
				label = arg
			}

			if label != "" && labelDepth(open, label) >= 0 {
				report(IssueLabel, n, "label %s shadows an open construct", label)
			}

			open = append(open, frame{kind: op, label: label, line: n})
		case "else":
			if len(open) == 0 || open[len(open)-1].kind != "if" {
				report(IssueStruct, n, "else outside an if")
			}
		case "end":
			if len(open) == 0 {
				report(IssueStruct, n, "end without an open construct")
				continue
			}

			open = open[:len(open)-1]
		case "br", "br_if":
			checkBranch(open, arg, func(msg string) { report(IssueLabel, n, "%s", msg) })
		}
	}

	for _, f := range open {
		report(IssueStruct, f.line, "%s is never closed", f.kind)
	}

	return issues
}

func checkBranch(open []frame, target string, fail func(string)) {
	if strings.HasPrefix(target, "$") {
		if labelDepth(open, target) < 0 {
			fail(fmt.Sprintf("branch to %s, which is not an enclosing construct", target))
		}

		return
	}

	depth, err := strconv.Atoi(target)
	if err != nil {
		fail(fmt.Sprintf("bad branch target %q", target))
		return
	}

	if depth < 0 || depth >= len(open) {
		fail(fmt.Sprintf("branch depth %d exceeds nesting %d", depth, len(open)))
	}
}

// labelDepth is the relative depth of label among the open frames, or -1.
func labelDepth(open []frame, label string) int {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i].label == label {
			return len(open) - 1 - i
		}
	}

	return -1
}
