package dialect

import "github.com/euforicio/chatmd/internal/stringify"

// Chatwork renders Chatwork message markup. Bold and italics have no
// equivalent and render as plain text.
var Chatwork = Style{
	Name:       "chatwork",
	Heading:    stringify.Markers{Before: "[info]", After: "[/info][hr]"},
	Delete:     stringify.Markers{Before: "~", After: "~"},
	InlineCode: stringify.Markers{Before: "[code]", After: "[/code]"},
	CodeBlock:  stringify.Markers{Before: "[code]", After: "[/code]"},
	Bullet:     "•",
}
