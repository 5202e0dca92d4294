// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of llgen. It
// tracks the generated-code contract in internal/emit/templates.go: bump the
// minor version whenever the AST or parser template's emitted surface
// (Node/Tree/Leaf/Visitor methods, Lexer/Parser methods) changes in a way
// that would require a caller to regenerate and re-review existing output.
const Current = "0.1.0"
