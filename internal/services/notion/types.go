package notion

import "strings"

// Block types used by transcriptsync.
const (
	BlockParagraph = "paragraph"
	BlockHeading1  = "heading_1"
	BlockHeading2  = "heading_2"
	BlockHeading3  = "heading_3"
	BlockDivider   = "divider"
)

// Page is a database row.
type Page struct {
	ID         string              `json:"id"`
	URL        string              `json:"url"`
	Properties map[string]Property `json:"properties"`
}

// Property is the subset of property value shapes the catalog export reads.
type Property struct {
	Type     string       `json:"type"`
	Number   *float64     `json:"number,omitempty"`
	Title    []RichText   `json:"title,omitempty"`
	RichText []RichText   `json:"rich_text,omitempty"`
	URL      *string      `json:"url,omitempty"`
	Date     *DateValue   `json:"date,omitempty"`
	Select   *SelectValue `json:"select,omitempty"`
	Files    []FileValue  `json:"files,omitempty"`
}

// DateValue is a date property payload.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// SelectValue is a select property payload.
type SelectValue struct {
	Name string `json:"name"`
}

// FileValue is one entry of a files property.
type FileValue struct {
	Type     string `json:"type"`
	External *struct {
		URL string `json:"url"`
	} `json:"external,omitempty"`
	File *struct {
		URL string `json:"url"`
	} `json:"file,omitempty"`
}

// Link returns the file URL regardless of hosting type.
func (f FileValue) Link() string {
	switch {
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	default:
		return ""
	}
}

// Text joins the plain text of a title or rich_text property.
func (p Property) Text() string {
	parts := p.Title
	if len(parts) == 0 {
		parts = p.RichText
	}
	return strings.TrimSpace(joinRichText(parts))
}

// URLValue returns the url property value or "".
func (p Property) URLValue() string {
	if p.URL == nil {
		return ""
	}
	return strings.TrimSpace(*p.URL)
}

// RichText is one rich text run.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the content of a text run.
type TextContent struct {
	Content string `json:"content"`
}

// TextBody is the payload shared by paragraph and heading blocks.
type TextBody struct {
	RichText []RichText `json:"rich_text"`
}

// Block is a page child block.
type Block struct {
	ID        string    `json:"id,omitempty"`
	Object    string    `json:"object,omitempty"`
	Type      string    `json:"type"`
	Paragraph *TextBody `json:"paragraph,omitempty"`
	Heading1  *TextBody `json:"heading_1,omitempty"`
	Heading2  *TextBody `json:"heading_2,omitempty"`
	Heading3  *TextBody `json:"heading_3,omitempty"`
	Divider   *struct{} `json:"divider,omitempty"`
}

// IsHeading reports whether the block is any heading level.
func (b Block) IsHeading() bool {
	return strings.HasPrefix(b.Type, "heading")
}

// PlainText returns the text of paragraph and heading blocks.
func (b Block) PlainText() string {
	var body *TextBody
	switch b.Type {
	case BlockParagraph:
		body = b.Paragraph
	case BlockHeading1:
		body = b.Heading1
	case BlockHeading2:
		body = b.Heading2
	case BlockHeading3:
		body = b.Heading3
	}
	if body == nil {
		return ""
	}
	return joinRichText(body.RichText)
}

// ParagraphBlock builds a paragraph with a single text run.
func ParagraphBlock(text string) Block {
	return Block{Object: "block", Type: BlockParagraph, Paragraph: textBody(text)}
}

// Heading2Block builds a level-two heading.
func Heading2Block(text string) Block {
	return Block{Object: "block", Type: BlockHeading2, Heading2: textBody(text)}
}

// DividerBlock builds a divider.
func DividerBlock() Block {
	return Block{Object: "block", Type: BlockDivider, Divider: &struct{}{}}
}

func textBody(text string) *TextBody {
	return &TextBody{RichText: []RichText{{Type: "text", Text: &TextContent{Content: text}}}}
}

func joinRichText(parts []RichText) string {
	var b strings.Builder
	for _, rt := range parts {
		switch {
		case rt.PlainText != "":
			b.WriteString(rt.PlainText)
		case rt.Text != nil:
			b.WriteString(rt.Text.Content)
		}
	}
	return b.String()
}
