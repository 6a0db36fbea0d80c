// Package resume defines the resume document produced by AI parsing and by
// the import adapters, together with its defaults and validation.
package resume

// Data is a complete resume document.
type Data struct {
	Picture        Picture         `json:"picture"`
	Basics         Basics          `json:"basics"`
	Summary        Summary         `json:"summary"`
	Sections       Sections        `json:"sections"`
	CustomSections []CustomSection `json:"customSections" validate:"dive"`
	Metadata       Metadata        `json:"metadata"`
}

// URL is a link with an optional display label.
type URL struct {
	URL   string `json:"url" description:"The full URL, including the protocol."`
	Label string `json:"label" description:"The text shown instead of the URL. Empty to show the URL."`
}

// Picture controls the profile photo. It is never taken from model output.
type Picture struct {
	Hidden       bool    `json:"hidden"`
	URL          string  `json:"url"`
	Size         int     `json:"size" validate:"min=32,max=512"`
	Rotation     int     `json:"rotation" validate:"min=0,max=360"`
	AspectRatio  float64 `json:"aspectRatio" validate:"min=0.5,max=2.5"`
	BorderRadius int     `json:"borderRadius" validate:"min=0,max=100"`
	BorderColor  string  `json:"borderColor"`
	BorderWidth  int     `json:"borderWidth" validate:"min=0"`
	ShadowColor  string  `json:"shadowColor"`
	ShadowWidth  int     `json:"shadowWidth" validate:"min=0"`
}

// CustomField is an extra contact line under the header.
type CustomField struct {
	ID   string `json:"id" validate:"required"`
	Icon string `json:"icon"`
	Text string `json:"text"`
	Link string `json:"link"`
}

// Basics holds the header of the resume.
type Basics struct {
	Name         string        `json:"name" description:"Full name of the candidate."`
	Headline     string        `json:"headline" description:"A short professional headline or current title."`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Location     string        `json:"location"`
	Website      URL           `json:"website"`
	CustomFields []CustomField `json:"customFields" validate:"dive"`
}

// Summary is the free-text profile section. Content is an HTML fragment.
type Summary struct {
	Title   string `json:"title"`
	Columns int    `json:"columns" validate:"min=1,max=6"`
	Hidden  bool   `json:"hidden"`
	Content string `json:"content" description:"The summary as HTML (paragraphs and lists)."`
}

// Section is a titled list of items of one kind.
type Section[T any] struct {
	Title   string `json:"title" description:"The title of the section."`
	Columns int    `json:"columns" validate:"min=1,max=6" description:"The number of columns the section spans."`
	Hidden  bool   `json:"hidden" description:"Whether to hide the section from the resume."`
	Items   []T    `json:"items" validate:"dive"`
}

// Item carries the fields every section entry shares.
type Item struct {
	ID     string `json:"id" validate:"required" description:"A unique identifier (UUID) for the item."`
	Hidden bool   `json:"hidden"`
}

// ItemID returns the identifier.
func (i *Item) ItemID() string { return i.ID }

// SetItemID replaces the identifier.
func (i *Item) SetItemID(id string) { i.ID = id }

type Profile struct {
	Item
	Icon     string `json:"icon" description:"An icon slug for the network, e.g. github, linkedin."`
	Network  string `json:"network"`
	Username string `json:"username"`
	Website  URL    `json:"website"`
}

type Experience struct {
	Item
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	Period      string `json:"period" description:"Free-form date range, e.g. \"Jan 2020 - Present\"."`
	Website     URL    `json:"website"`
	Description string `json:"description" description:"Responsibilities and achievements as HTML."`
}

type Education struct {
	Item
	School      string `json:"school"`
	Degree      string `json:"degree"`
	Area        string `json:"area" description:"Field of study."`
	Grade       string `json:"grade"`
	Location    string `json:"location"`
	Period      string `json:"period"`
	Website     URL    `json:"website"`
	Description string `json:"description"`
}

type Project struct {
	Item
	Name        string `json:"name"`
	Period      string `json:"period"`
	Website     URL    `json:"website"`
	Description string `json:"description"`
}

type Skill struct {
	Item
	Icon        string   `json:"icon"`
	Name        string   `json:"name"`
	Proficiency string   `json:"proficiency" description:"e.g. Beginner, Intermediate, Expert."`
	Level       int      `json:"level" validate:"min=0,max=5" description:"Proficiency from 0 (unset) to 5."`
	Keywords    []string `json:"keywords"`
}

type Language struct {
	Item
	Language string `json:"language"`
	Fluency  string `json:"fluency"`
	Level    int    `json:"level" validate:"min=0,max=5"`
}

type Interest struct {
	Item
	Icon     string   `json:"icon"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type Award struct {
	Item
	Title       string `json:"title"`
	Awarder     string `json:"awarder"`
	Date        string `json:"date"`
	Website     URL    `json:"website"`
	Description string `json:"description"`
}

type Certification struct {
	Item
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Website     URL    `json:"website"`
	Description string `json:"description"`
}

type Publication struct {
	Item
	Title       string `json:"title"`
	Publisher   string `json:"publisher"`
	Date        string `json:"date"`
	Website     URL    `json:"website"`
	Description string `json:"description"`
}

type Volunteer struct {
	Item
	Organization string `json:"organization"`
	Location     string `json:"location"`
	Period       string `json:"period"`
	Website      URL    `json:"website"`
	Description  string `json:"description"`
}

type Reference struct {
	Item
	Name        string `json:"name"`
	Position    string `json:"position"`
	Website     URL    `json:"website"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

// Sections holds every built-in section.
type Sections struct {
	Profiles       Section[Profile]       `json:"profiles"`
	Experience     Section[Experience]    `json:"experience"`
	Education      Section[Education]     `json:"education"`
	Projects       Section[Project]       `json:"projects"`
	Skills         Section[Skill]         `json:"skills"`
	Languages      Section[Language]      `json:"languages"`
	Interests      Section[Interest]      `json:"interests"`
	Awards         Section[Award]         `json:"awards"`
	Certifications Section[Certification] `json:"certifications"`
	Publications   Section[Publication]   `json:"publications"`
	Volunteer      Section[Volunteer]     `json:"volunteer"`
	References     Section[Reference]     `json:"references"`
}

// CustomItem is an entry of a user-defined section.
type CustomItem struct {
	Item
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Website     URL    `json:"website"`
	Description string `json:"description"`
}

// CustomSection is a user-defined section.
type CustomSection struct {
	ID      string       `json:"id" validate:"required"`
	Title   string       `json:"title"`
	Columns int          `json:"columns" validate:"min=1,max=6"`
	Hidden  bool         `json:"hidden"`
	Items   []CustomItem `json:"items" validate:"dive"`
}

// SetDefaults gives sections decoded from partial input a usable layout.
func (c *CustomSection) SetDefaults() {
	c.Columns = 1
	c.Items = []CustomItem{}
}

// Metadata controls layout and styling. It is never taken from model output.
type Metadata struct {
	Template   string     `json:"template" validate:"required"`
	Layout     Layout     `json:"layout"`
	CSS        CSS        `json:"css"`
	Page       Page       `json:"page"`
	Design     Design     `json:"design"`
	Typography Typography `json:"typography"`
	Notes      string     `json:"notes"`
}

type Layout struct {
	SidebarWidth int          `json:"sidebarWidth" validate:"min=10,max=50"`
	Pages        []LayoutPage `json:"pages" validate:"min=1,dive"`
}

type LayoutPage struct {
	FullWidth bool     `json:"fullWidth"`
	Main      []string `json:"main"`
	Sidebar   []string `json:"sidebar"`
}

// SetDefaults gives pages decoded from partial input empty columns.
func (p *LayoutPage) SetDefaults() {
	p.Main = []string{}
	p.Sidebar = []string{}
}

type CSS struct {
	Enabled bool   `json:"enabled"`
	Value   string `json:"value"`
}

type Page struct {
	GapX      int    `json:"gapX" validate:"min=0"`
	GapY      int    `json:"gapY" validate:"min=0"`
	MarginX   int    `json:"marginX" validate:"min=0"`
	MarginY   int    `json:"marginY" validate:"min=0"`
	Format    string `json:"format" validate:"oneof=a4 letter"`
	Locale    string `json:"locale"`
	HideIcons bool   `json:"hideIcons"`
}

type Design struct {
	Colors Colors `json:"colors"`
	Level  Level  `json:"level"`
}

type Colors struct {
	Primary    string `json:"primary"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

type Level struct {
	Icon string `json:"icon"`
	Type string `json:"type" validate:"oneof=hidden circle square rectangle rectangle-full progress-bar icon"`
}

type Typography struct {
	Body    Font `json:"body"`
	Heading Font `json:"heading"`
}

type Font struct {
	FontFamily  string   `json:"fontFamily"`
	FontWeights []string `json:"fontWeights"`
	FontSize    float64  `json:"fontSize" validate:"min=6,max=24"`
	LineHeight  float64  `json:"lineHeight" validate:"min=0.5,max=4"`
}

// SetDefaults keeps keywords an empty list rather than null.
func (s *Skill) SetDefaults() { s.Keywords = []string{} }

// SetDefaults keeps keywords an empty list rather than null.
func (i *Interest) SetDefaults() { i.Keywords = []string{} }
