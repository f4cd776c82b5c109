// Package latex assembles complete LaTeX documents around generated content.
package latex

import "strings"

const (
	TitleProblems  = "Problems"
	TitleSolutions = "Solutions"
)

// SolutionMacros is the spacing and notation preamble prepended to solution bodies.
const SolutionMacros = `% Custom spacing for limit notation
\def\limit#1{\lim\limits_{#1}\;}
\def\infinity{\infty}

% Better fraction spacing
\setlength{\jot}{12pt}
\setlength{\arraycolsep}{2pt}

% Better display math spacing
\setlength{\abovedisplayskip}{12pt}
\setlength{\belowdisplayskip}{12pt}
\setlength{\abovedisplayshortskip}{12pt}
\setlength{\belowdisplayshortskip}{12pt}`

const header = `\documentclass{article}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{amsthm}

\begin{document}

`

// Assemble wraps body in a standalone article with a single unnumbered section titled title.
// The body is inserted verbatim.
func Assemble(body, title string) string {
	var b strings.Builder
	b.Grow(len(header) + len(body) + len(title) + 48)
	b.WriteString(header)
	b.WriteString(`\section*{`)
	b.WriteString(title)
	b.WriteString("}\n")
	b.WriteString(body)
	b.WriteString("\n\n\\end{document}\n")
	return b.String()
}

// WithSolutionMacros prefixes solutions with SolutionMacros.
func WithSolutionMacros(solutions string) string {
	return SolutionMacros + "\n" + solutions
}

// FallbackTemplate builds a minimal template from plain text extracted from a worksheet.
func FallbackTemplate(text string) string {
	return "\\documentclass{article}\n\\begin{document}\n\\begin{enumerate}\n" +
		strings.TrimSpace(text) +
		"\n\\end{enumerate}\n\\end{document}\n"
}
