package notion

// BlockType tags the content variant a block carries.
type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockCode             BlockType = "code"
	BlockImage            BlockType = "image"
	BlockVideo            BlockType = "video"
	BlockQuote            BlockType = "quote"
	BlockDivider          BlockType = "divider"
	BlockCallout          BlockType = "callout"
	BlockColumnList       BlockType = "column_list"
	BlockColumn           BlockType = "column"
	BlockToggle           BlockType = "toggle"
	BlockBookmark         BlockType = "bookmark"
	BlockLinkPreview      BlockType = "link_preview"
)

// Block is one node of the recursive document tree. The wire layout is
// preserved for the front-end renderer: a "type" tag plus a type-named
// content key, with optional "children" once enriched.
//
// Children is only populated when enrichment of that subtree completed;
// HasChildren true with Children absent means enrichment failed or was
// skipped, not "no children".
type Block struct {
	ID          string    `json:"id"`
	Type        BlockType `json:"type"`
	HasChildren bool      `json:"has_children,omitempty"`

	Paragraph        *RichTextContent `json:"paragraph,omitempty"`
	Heading1         *RichTextContent `json:"heading_1,omitempty"`
	Heading2         *RichTextContent `json:"heading_2,omitempty"`
	Heading3         *RichTextContent `json:"heading_3,omitempty"`
	BulletedListItem *RichTextContent `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextContent `json:"numbered_list_item,omitempty"`
	Quote            *RichTextContent `json:"quote,omitempty"`
	Toggle           *RichTextContent `json:"toggle,omitempty"`
	Callout          *CalloutContent  `json:"callout,omitempty"`
	Code             *CodeContent     `json:"code,omitempty"`
	Image            *FileContent     `json:"image,omitempty"`
	Video            *FileContent     `json:"video,omitempty"`
	Bookmark         *LinkContent     `json:"bookmark,omitempty"`
	LinkPreview      *LinkContent     `json:"link_preview,omitempty"`
	Divider          *EmptyContent    `json:"divider,omitempty"`
	ColumnList       *EmptyContent    `json:"column_list,omitempty"`
	Column           *EmptyContent    `json:"column,omitempty"`

	Children []Block `json:"children,omitempty"`
}

type RichTextContent struct {
	RichText []RichText `json:"rich_text"`
}

type CalloutContent struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type CodeContent struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// FileContent is a hosted or external media reference. Hosted file URLs
// are time-limited; the image route re-fetches them lazily.
type FileContent struct {
	Type     string     `json:"type"`
	File     *FileRef   `json:"file,omitempty"`
	External *FileRef   `json:"external,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

type FileRef struct {
	URL string `json:"url"`
}

type LinkContent struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

type EmptyContent struct{}

// ImageURL returns the image block's current URL, or "" when the block
// is not an image or carries no URL.
func (b *Block) ImageURL() string {
	if b.Type != BlockImage || b.Image == nil {
		return ""
	}
	switch {
	case b.Image.File != nil:
		return b.Image.File.URL
	case b.Image.External != nil:
		return b.Image.External.URL
	}
	return ""
}

// IsRenderableContent reports whether the block counts as real content.
// Bookmarks, link previews, and empty paragraphs do not: a recipe whose
// body is a single bookmark embed is considered contentless.
func (b *Block) IsRenderableContent() bool {
	switch b.Type {
	case BlockBookmark, BlockLinkPreview:
		return false
	case BlockParagraph:
		return b.Paragraph != nil && len(b.Paragraph.RichText) > 0
	}
	return true
}

// HasRenderableContent reports whether any block in the sequence counts
// as real content.
func HasRenderableContent(blocks []Block) bool {
	for i := range blocks {
		if blocks[i].IsRenderableContent() {
			return true
		}
	}
	return false
}
