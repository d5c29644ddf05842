package model

// TextPart is any upstream generation payload element that can be rendered
// as text. Generators return a sequence of these regardless of whether the
// upstream answered with a plain string or a structured list.
type TextPart interface {
	Text() string
}

// PlainText is a TextPart that is already a string.
type PlainText string

// Text returns the string itself.
func (p PlainText) Text() string { return string(p) }
