package docx

import (
	"fmt"
	"strings"
)

// RenderErrorKind classifies why a template could not be rendered.
type RenderErrorKind int

const (
	KindGeneric RenderErrorKind = iota
	KindUnclosedTag
	KindUnopenedTag
	KindMultiple
)

func (k RenderErrorKind) String() string {
	switch k {
	case KindUnclosedTag:
		return "unclosed_tag"
	case KindUnopenedTag:
		return "unopened_tag"
	case KindMultiple:
		return "multi_error"
	default:
		return "render_failed"
	}
}

// TagIssue locates one placeholder syntax problem.
type TagIssue struct {
	Kind    RenderErrorKind
	Part    string
	Excerpt string
}

func (i TagIssue) String() string {
	switch i.Kind {
	case KindUnclosedTag:
		return fmt.Sprintf("unclosed tag %q in %s: add the missing }", i.Excerpt, i.Part)
	case KindUnopenedTag:
		return fmt.Sprintf("unopened tag %q in %s: add the missing {", i.Excerpt, i.Part)
	default:
		return fmt.Sprintf("invalid tag %q in %s", i.Excerpt, i.Part)
	}
}

// Diagnostics summarizes the raw placeholder syntax of a template.
type Diagnostics struct {
	OpenBraces   int
	CloseBraces  int
	DoubleBraces int
	LoopMarkers  int
}

func (d Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %d { and %d }", d.OpenBraces, d.CloseBraces)
	if d.OpenBraces != d.CloseBraces {
		b.WriteString(" (unbalanced)")
	}
	if d.DoubleBraces > 0 {
		fmt.Fprintf(&b, ", %d double-brace {{...}} tags (use single braces)", d.DoubleBraces)
	}
	if d.LoopMarkers > 0 {
		fmt.Fprintf(&b, ", %d loop markers {#...}/{/...} (loops are not supported)", d.LoopMarkers)
	}
	return b.String()
}

// RenderError is returned by Render for every failure.
type RenderError struct {
	Kind        RenderErrorKind
	Issues      []TagIssue
	Diagnostics *Diagnostics
	Err         error
}

func newUnclosedTagError(issue TagIssue) *RenderError {
	return &RenderError{Kind: KindUnclosedTag, Issues: []TagIssue{issue}}
}

func newUnopenedTagError(issue TagIssue) *RenderError {
	return &RenderError{Kind: KindUnopenedTag, Issues: []TagIssue{issue}}
}

func newMultiError(issues []TagIssue, diag Diagnostics) *RenderError {
	return &RenderError{Kind: KindMultiple, Issues: issues, Diagnostics: &diag}
}

func newGenericError(err error) *RenderError {
	return &RenderError{Kind: KindGeneric, Err: err}
}

// classify picks the error variant for the issues found in one render. A single issue in an
// unbalanced template keeps its variant but carries the brace counts.
func classify(issues []TagIssue, diag Diagnostics) *RenderError {
	if len(issues) == 1 {
		var e *RenderError
		switch issues[0].Kind {
		case KindUnclosedTag:
			e = newUnclosedTagError(issues[0])
		case KindUnopenedTag:
			e = newUnopenedTagError(issues[0])
		}
		if e != nil {
			if diag.OpenBraces != diag.CloseBraces {
				e.Diagnostics = &diag
			}
			return e
		}
	}
	return newMultiError(issues, diag)
}

func (e *RenderError) Error() string {
	switch e.Kind {
	case KindUnclosedTag, KindUnopenedTag:
		msg := "template syntax error: " + e.Issues[0].String()
		if e.Diagnostics != nil {
			msg += " (" + e.Diagnostics.String() + ")"
		}
		return msg
	case KindMultiple:
		parts := make([]string, 0, len(e.Issues))
		for _, i := range e.Issues {
			parts = append(parts, i.String())
		}
		msg := fmt.Sprintf("template has %d tag syntax errors", len(e.Issues))
		if e.Diagnostics != nil {
			msg += " (" + e.Diagnostics.String() + ")"
		}
		return msg + ": " + strings.Join(parts, "; ")
	default:
		if e.Err == nil {
			return "template render failed"
		}
		return "template render failed: " + e.Err.Error()
	}
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsSyntax reports whether the error is caused by the template's tag syntax.
func (e *RenderError) IsSyntax() bool { return e.Kind != KindGeneric }
