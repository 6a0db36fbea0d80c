package importer

import (
	"strings"

	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/resume"
	"github.com/jasonyy2018/rresume/pkg/schema"
)

// ReactiveResumeV4 imports exports of the previous major version, whose
// items carry a "visible" flag and links of the form {label, href}.
type ReactiveResumeV4 struct{}

func (ReactiveResumeV4) Name() string { return "Reactive Resume v4" }

var v4Shape = mustShape(`{
	"type": "object",
	"anyOf": [{"required": ["basics"]}, {"required": ["sections"]}]
}`)

type v4URL struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

func (u v4URL) url() resume.URL { return resume.URL{URL: u.Href, Label: u.Label} }

func hidden(visible *bool) bool { return visible != nil && !*visible }

type v4Section[T any] struct {
	Name    string `json:"name"`
	Columns int    `json:"columns"`
	Visible *bool  `json:"visible"`
	Items   []T    `json:"items"`
}

// convert maps the section header and every item through fn.
func convert[T, U any](s v4Section[T], title string, fn func(T) U) resume.Section[U] {
	out := resume.Section[U]{
		Title:   title,
		Columns: within(s.Columns, 1, 6, 1),
		Hidden:  hidden(s.Visible),
		Items:   make([]U, 0, len(s.Items)),
	}
	if s.Name != "" {
		out.Title = s.Name
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, fn(it))
	}
	return out
}

type v4Data struct {
	Basics struct {
		Name         string `json:"name"`
		Headline     string `json:"headline"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Location     string `json:"location"`
		URL          v4URL  `json:"url"`
		CustomFields []struct {
			ID    string `json:"id"`
			Icon  string `json:"icon"`
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"customFields"`
		Picture struct {
			URL          string  `json:"url"`
			Size         int     `json:"size"`
			AspectRatio  float64 `json:"aspectRatio"`
			BorderRadius int     `json:"borderRadius"`
			Effects      struct {
				Hidden bool `json:"hidden"`
			} `json:"effects"`
		} `json:"picture"`
	} `json:"basics"`
	Sections struct {
		Summary struct {
			Name    string `json:"name"`
			Columns int    `json:"columns"`
			Visible *bool  `json:"visible"`
			Content string `json:"content"`
		} `json:"summary"`
		Awards         v4Section[v4Award]         `json:"awards"`
		Certifications v4Section[v4Certification] `json:"certifications"`
		Education      v4Section[v4Education]     `json:"education"`
		Experience     v4Section[v4Experience]    `json:"experience"`
		Volunteer      v4Section[v4Volunteer]     `json:"volunteer"`
		Interests      v4Section[v4Interest]      `json:"interests"`
		Languages      v4Section[v4Language]      `json:"languages"`
		Profiles       v4Section[v4Profile]       `json:"profiles"`
		Projects       v4Section[v4Project]       `json:"projects"`
		Publications   v4Section[v4Publication]   `json:"publications"`
		References     v4Section[v4Reference]     `json:"references"`
		Skills         v4Section[v4Skill]         `json:"skills"`
		Custom         map[string]v4CustomSection `json:"custom"`
	} `json:"sections"`
	Metadata struct {
		Template string       `json:"template"`
		Layout   [][][]string `json:"layout"`
		CSS      struct {
			Value   string `json:"value"`
			Visible bool   `json:"visible"`
		} `json:"css"`
		Page struct {
			Format string `json:"format"`
		} `json:"page"`
		Theme struct {
			Background string `json:"background"`
			Text       string `json:"text"`
			Primary    string `json:"primary"`
		} `json:"theme"`
		Typography struct {
			Font struct {
				Family string  `json:"family"`
				Size   float64 `json:"size"`
			} `json:"font"`
			LineHeight float64 `json:"lineHeight"`
			HideIcons  bool    `json:"hideIcons"`
		} `json:"typography"`
		Notes string `json:"notes"`
	} `json:"metadata"`
}

type v4Award struct {
	ID      string `json:"id"`
	Visible *bool  `json:"visible"`
	Title   string `json:"title"`
	Awarder string `json:"awarder"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
	URL     v4URL  `json:"url"`
}

type v4Certification struct {
	ID      string `json:"id"`
	Visible *bool  `json:"visible"`
	Name    string `json:"name"`
	Issuer  string `json:"issuer"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
	URL     v4URL  `json:"url"`
}

type v4Education struct {
	ID          string `json:"id"`
	Visible     *bool  `json:"visible"`
	Institution string `json:"institution"`
	StudyType   string `json:"studyType"`
	Area        string `json:"area"`
	Score       string `json:"score"`
	Date        string `json:"date"`
	Summary     string `json:"summary"`
	URL         v4URL  `json:"url"`
}

type v4Experience struct {
	ID       string `json:"id"`
	Visible  *bool  `json:"visible"`
	Company  string `json:"company"`
	Position string `json:"position"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Summary  string `json:"summary"`
	URL      v4URL  `json:"url"`
}

type v4Volunteer struct {
	ID           string `json:"id"`
	Visible      *bool  `json:"visible"`
	Organization string `json:"organization"`
	Position     string `json:"position"`
	Location     string `json:"location"`
	Date         string `json:"date"`
	Summary      string `json:"summary"`
	URL          v4URL  `json:"url"`
}

type v4Interest struct {
	ID       string   `json:"id"`
	Visible  *bool    `json:"visible"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type v4Language struct {
	ID          string `json:"id"`
	Visible     *bool  `json:"visible"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       int    `json:"level"`
}

type v4Profile struct {
	ID       string `json:"id"`
	Visible  *bool  `json:"visible"`
	Network  string `json:"network"`
	Username string `json:"username"`
	Icon     string `json:"icon"`
	URL      v4URL  `json:"url"`
}

type v4Project struct {
	ID          string   `json:"id"`
	Visible     *bool    `json:"visible"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Summary     string   `json:"summary"`
	Keywords    []string `json:"keywords"`
	URL         v4URL    `json:"url"`
}

type v4Publication struct {
	ID        string `json:"id"`
	Visible   *bool  `json:"visible"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	Summary   string `json:"summary"`
	URL       v4URL  `json:"url"`
}

type v4Reference struct {
	ID          string `json:"id"`
	Visible     *bool  `json:"visible"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	URL         v4URL  `json:"url"`
}

type v4Skill struct {
	ID          string   `json:"id"`
	Visible     *bool    `json:"visible"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Level       int      `json:"level"`
	Keywords    []string `json:"keywords"`
}

type v4CustomSection struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Columns int            `json:"columns"`
	Visible *bool          `json:"visible"`
	Items   []v4CustomItem `json:"items"`
}

type v4CustomItem struct {
	ID          string `json:"id"`
	Visible     *bool  `json:"visible"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Summary     string `json:"summary"`
	URL         v4URL  `json:"url"`
}

func (r ReactiveResumeV4) Parse(raw []byte) (resume.Data, error) {
	if err := checkShape(r.Name(), v4Shape, raw); err != nil {
		return resume.Data{}, err
	}
	var in v4Data
	if err := schema.Catch(raw, &in); err != nil {
		return resume.Data{}, &aierr.Error{Kind: aierr.BadRequest, Message: "The file is not a valid Reactive Resume v4 export.", Cause: err}
	}
	return finish(r.Name(), fromV4(in))
}

func item(id string, visible *bool) resume.Item {
	return resume.Item{ID: id, Hidden: hidden(visible)}
}

func fromV4(in v4Data) resume.Data {
	d := resume.Default()

	b := in.Basics
	d.Basics.Name = b.Name
	d.Basics.Headline = b.Headline
	d.Basics.Email = b.Email
	d.Basics.Phone = b.Phone
	d.Basics.Location = b.Location
	d.Basics.Website = b.URL.url()
	for _, cf := range b.CustomFields {
		d.Basics.CustomFields = append(d.Basics.CustomFields, resume.CustomField{
			ID:   cf.ID,
			Icon: cf.Icon,
			Text: joinNonEmpty(": ", cf.Name, cf.Value),
		})
	}

	d.Picture.URL = b.Picture.URL
	d.Picture.Hidden = b.Picture.Effects.Hidden
	d.Picture.Size = within(b.Picture.Size, 32, 512, d.Picture.Size)
	d.Picture.BorderRadius = within(b.Picture.BorderRadius, 0, 100, d.Picture.BorderRadius)
	if ar := b.Picture.AspectRatio; ar >= 0.5 && ar <= 2.5 {
		d.Picture.AspectRatio = ar
	}

	s := in.Sections
	if s.Summary.Name != "" {
		d.Summary.Title = s.Summary.Name
	}
	d.Summary.Columns = within(s.Summary.Columns, 1, 6, 1)
	d.Summary.Hidden = hidden(s.Summary.Visible)
	d.Summary.Content = richText(s.Summary.Content)

	out := &d.Sections
	out.Awards = convert(s.Awards, out.Awards.Title, func(a v4Award) resume.Award {
		return resume.Award{Item: item(a.ID, a.Visible), Title: a.Title, Awarder: a.Awarder, Date: a.Date, Website: a.URL.url(), Description: richText(a.Summary)}
	})
	out.Certifications = convert(s.Certifications, out.Certifications.Title, func(c v4Certification) resume.Certification {
		return resume.Certification{Item: item(c.ID, c.Visible), Title: c.Name, Issuer: c.Issuer, Date: c.Date, Website: c.URL.url(), Description: richText(c.Summary)}
	})
	out.Education = convert(s.Education, out.Education.Title, func(e v4Education) resume.Education {
		return resume.Education{
			Item: item(e.ID, e.Visible), School: e.Institution, Degree: e.StudyType, Area: e.Area,
			Grade: e.Score, Period: e.Date, Website: e.URL.url(), Description: richText(e.Summary),
		}
	})
	out.Experience = convert(s.Experience, out.Experience.Title, func(e v4Experience) resume.Experience {
		return resume.Experience{
			Item: item(e.ID, e.Visible), Company: e.Company, Position: e.Position, Location: e.Location,
			Period: e.Date, Website: e.URL.url(), Description: richText(e.Summary),
		}
	})
	out.Volunteer = convert(s.Volunteer, out.Volunteer.Title, func(v v4Volunteer) resume.Volunteer {
		desc := richText(v.Summary)
		if v.Position != "" {
			desc = resume.FromPlain(v.Position) + desc
		}
		return resume.Volunteer{
			Item: item(v.ID, v.Visible), Organization: v.Organization, Location: v.Location,
			Period: v.Date, Website: v.URL.url(), Description: desc,
		}
	})
	out.Interests = convert(s.Interests, out.Interests.Title, func(i v4Interest) resume.Interest {
		return resume.Interest{Item: item(i.ID, i.Visible), Name: i.Name, Keywords: nonNil(i.Keywords)}
	})
	out.Languages = convert(s.Languages, out.Languages.Title, func(l v4Language) resume.Language {
		return resume.Language{Item: item(l.ID, l.Visible), Language: l.Name, Fluency: l.Description, Level: within(l.Level, 0, 5, 0)}
	})
	out.Profiles = convert(s.Profiles, out.Profiles.Title, func(p v4Profile) resume.Profile {
		return resume.Profile{Item: item(p.ID, p.Visible), Icon: p.Icon, Network: p.Network, Username: p.Username, Website: p.URL.url()}
	})
	out.Projects = convert(s.Projects, out.Projects.Title, func(p v4Project) resume.Project {
		desc := richText(p.Summary)
		if desc == "" {
			desc = richText(p.Description)
		}
		return resume.Project{Item: item(p.ID, p.Visible), Name: p.Name, Period: p.Date, Website: p.URL.url(), Description: desc}
	})
	out.Publications = convert(s.Publications, out.Publications.Title, func(p v4Publication) resume.Publication {
		return resume.Publication{Item: item(p.ID, p.Visible), Title: p.Name, Publisher: p.Publisher, Date: p.Date, Website: p.URL.url(), Description: richText(p.Summary)}
	})
	out.References = convert(s.References, out.References.Title, func(r v4Reference) resume.Reference {
		return resume.Reference{Item: item(r.ID, r.Visible), Name: r.Name, Position: r.Description, Website: r.URL.url(), Description: richText(r.Summary)}
	})
	out.Skills = convert(s.Skills, out.Skills.Title, func(sk v4Skill) resume.Skill {
		return resume.Skill{
			Item: item(sk.ID, sk.Visible), Name: sk.Name, Proficiency: sk.Description,
			Level: within(sk.Level, 0, 5, 0), Keywords: nonNil(sk.Keywords),
		}
	})

	for key, cs := range s.Custom {
		id := cs.ID
		if id == "" {
			id = key
		}
		sec := resume.CustomSection{
			ID:      id,
			Title:   cs.Name,
			Columns: within(cs.Columns, 1, 6, 1),
			Hidden:  hidden(cs.Visible),
			Items:   make([]resume.CustomItem, 0, len(cs.Items)),
		}
		for _, it := range cs.Items {
			sec.Items = append(sec.Items, resume.CustomItem{
				Item: item(it.ID, it.Visible), Title: it.Name, Subtitle: it.Description, Date: it.Date,
				Location: it.Location, Website: it.URL.url(), Description: richText(it.Summary),
			})
		}
		d.CustomSections = append(d.CustomSections, sec)
	}
	sortCustom(d.CustomSections)

	applyV4Metadata(&d.Metadata, in)
	return d
}

func applyV4Metadata(m *resume.Metadata, in v4Data) {
	md := in.Metadata
	if md.Template != "" {
		m.Template = md.Template
	}
	m.Notes = md.Notes
	m.CSS = resume.CSS{Enabled: md.CSS.Visible, Value: md.CSS.Value}
	if f := strings.ToLower(md.Page.Format); f == "a4" || f == "letter" {
		m.Page.Format = f
	}
	m.Page.HideIcons = md.Typography.HideIcons

	if md.Theme.Primary != "" {
		m.Design.Colors.Primary = md.Theme.Primary
	}
	if md.Theme.Text != "" {
		m.Design.Colors.Text = md.Theme.Text
	}
	if md.Theme.Background != "" {
		m.Design.Colors.Background = md.Theme.Background
	}

	if fam := md.Typography.Font.Family; fam != "" {
		m.Typography.Body.FontFamily = fam
		m.Typography.Heading.FontFamily = fam
	}
	if size := md.Typography.Font.Size; size >= 6 && size <= 24 {
		m.Typography.Body.FontSize = size
	}
	if lh := md.Typography.LineHeight; lh >= 0.5 && lh <= 4 {
		m.Typography.Body.LineHeight = lh
	}

	if len(md.Layout) > 0 {
		pages := make([]resume.LayoutPage, 0, len(md.Layout))
		for _, cols := range md.Layout {
			page := resume.LayoutPage{Main: []string{}, Sidebar: []string{}}
			if len(cols) > 0 {
				page.Main = layoutIDs(cols[0])
			}
			if len(cols) > 1 {
				page.Sidebar = layoutIDs(cols[1])
			}
			page.FullWidth = len(page.Sidebar) == 0
			pages = append(pages, page)
		}
		m.Layout.Pages = pages
	}
}

// layoutIDs drops the "custom." prefix v4 used for user sections.
func layoutIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strings.TrimPrefix(id, "custom."))
	}
	return out
}
