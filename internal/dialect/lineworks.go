package dialect

import "github.com/euforicio/chatmd/internal/stringify"

// Lineworks renders LINE WORKS plain text, which has no markup at all;
// headings and strikethrough are approximated with emoji.
var Lineworks = Style{
	Name:         "lineworks",
	Heading:      stringify.Markers{Before: "📍 ", After: " 📍"},
	Delete:       stringify.Markers{Before: " ❌", After: "❌ "},
	CodeBlock:    stringify.Markers{Before: "\n\n", After: "\n"},
	Bullet:       "✔️",
	TrustEncoded: true,
}
