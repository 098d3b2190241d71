package notion

// RichText is one span of text with optional styling.
type RichText struct {
	PlainText   string       `json:"plain_text"`
	Href        *string      `json:"href,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

type Annotations struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Code          bool   `json:"code,omitempty"`
	Color         string `json:"color,omitempty"`
}

// Page is one row of a content database. Properties vary by database
// schema; the posts and recipes databases each use a subset.
type Page struct {
	ID         string         `json:"id"`
	Properties PageProperties `json:"properties"`
}

type PageProperties struct {
	// Posts database
	Title     *TitleProperty       `json:"Title,omitempty"`
	Slug      *RichTextProperty    `json:"Slug,omitempty"`
	Tags      *MultiSelectProperty `json:"Tags,omitempty"`
	Date      *DateProperty        `json:"Date,omitempty"`
	Published *CheckboxProperty    `json:"Published,omitempty"`
	// Recipes database
	RecipeName *TitleProperty    `json:"Recipe Name,omitempty"`
	Link       *URLProperty      `json:"Link,omitempty"`
	Notes      *RichTextProperty `json:"Notes,omitempty"`
}

type TitleProperty struct {
	Title []RichText `json:"title"`
}

type RichTextProperty struct {
	RichText []RichText `json:"rich_text"`
}

type MultiSelectProperty struct {
	MultiSelect []SelectOption `json:"multi_select"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateProperty struct {
	Date *DateValue `json:"date"`
}

type DateValue struct {
	Start *string `json:"start"`
}

type CheckboxProperty struct {
	Checkbox bool `json:"checkbox"`
}

type URLProperty struct {
	URL *string `json:"url"`
}

// Title returns the post title, or "Untitled".
func (p *Page) Title() string {
	return firstPlainText(titleText(p.Properties.Title), "Untitled")
}

// RecipeName returns the recipe title, or "Untitled".
func (p *Page) RecipeName() string {
	return firstPlainText(titleText(p.Properties.RecipeName), "Untitled")
}

// Slug returns the post slug, falling back to the page ID.
func (p *Page) Slug() string {
	if p.Properties.Slug != nil {
		if s := firstPlainText(p.Properties.Slug.RichText, ""); s != "" {
			return s
		}
	}
	return p.ID
}

// Tags returns tag names, never nil.
func (p *Page) Tags() []string {
	tags := []string{}
	if p.Properties.Tags != nil {
		for _, opt := range p.Properties.Tags.MultiSelect {
			tags = append(tags, opt.Name)
		}
	}
	return tags
}

// Date returns the publish date, or nil.
func (p *Page) Date() *string {
	if p.Properties.Date != nil && p.Properties.Date.Date != nil {
		return p.Properties.Date.Date.Start
	}
	return nil
}

// URL returns the recipe's external link, or nil.
func (p *Page) URL() *string {
	if p.Properties.Link != nil {
		return p.Properties.Link.URL
	}
	return nil
}

// Notes returns the recipe notes text, or nil.
func (p *Page) Notes() *string {
	if p.Properties.Notes != nil {
		if s := firstPlainText(p.Properties.Notes.RichText, ""); s != "" {
			return &s
		}
	}
	return nil
}

func titleText(prop *TitleProperty) []RichText {
	if prop == nil {
		return nil
	}
	return prop.Title
}

func firstPlainText(spans []RichText, fallback string) string {
	if len(spans) > 0 && spans[0].PlainText != "" {
		return spans[0].PlainText
	}
	return fallback
}
