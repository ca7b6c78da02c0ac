package dialect

import "github.com/euforicio/chatmd/internal/stringify"

// Slack renders Slack mrkdwn. Headings have no mrkdwn form and become bold.
var Slack = Style{
	Name:         "slack",
	Heading:      stringify.Markers{Before: "*", After: "*"},
	Strong:       stringify.Markers{Before: "*", After: "*"},
	Emphasis:     stringify.Markers{Before: "_", After: "_"},
	Delete:       stringify.Markers{Before: "~", After: "~"},
	InlineCode:   stringify.Markers{Before: "`", After: "`"},
	CodeBlock:    stringify.Markers{Before: "```\n", After: "\n```"},
	Bullet:       "•",
	TrustEncoded: true,
}
