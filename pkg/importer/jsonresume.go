package importer

import (
	"strings"

	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/resume"
	"github.com/jasonyy2018/rresume/pkg/schema"
)

// JSONResume imports the community jsonresume.org v1 format. Its text
// fields are plain text and are converted to HTML.
type JSONResume struct{}

func (JSONResume) Name() string { return "JSON Resume" }

type jrLocation struct {
	Address     string `json:"address"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
}

func (l jrLocation) String() string {
	return joinNonEmpty(", ", l.City, l.Region, l.CountryCode)
}

type jrData struct {
	Basics struct {
		Name     string     `json:"name"`
		Label    string     `json:"label"`
		Image    string     `json:"image"`
		Email    string     `json:"email"`
		Phone    string     `json:"phone"`
		URL      string     `json:"url"`
		Summary  string     `json:"summary"`
		Location jrLocation `json:"location"`
		Profiles []struct {
			Network  string `json:"network"`
			Username string `json:"username"`
			URL      string `json:"url"`
		} `json:"profiles"`
	} `json:"basics"`
	Work []struct {
		Name       string   `json:"name"`
		Company    string   `json:"company"`
		Position   string   `json:"position"`
		Location   string   `json:"location"`
		URL        string   `json:"url"`
		StartDate  string   `json:"startDate"`
		EndDate    string   `json:"endDate"`
		Summary    string   `json:"summary"`
		Highlights []string `json:"highlights"`
	} `json:"work"`
	Volunteer []struct {
		Organization string   `json:"organization"`
		Position     string   `json:"position"`
		URL          string   `json:"url"`
		StartDate    string   `json:"startDate"`
		EndDate      string   `json:"endDate"`
		Summary      string   `json:"summary"`
		Highlights   []string `json:"highlights"`
	} `json:"volunteer"`
	Education []struct {
		Institution string   `json:"institution"`
		URL         string   `json:"url"`
		Area        string   `json:"area"`
		StudyType   string   `json:"studyType"`
		StartDate   string   `json:"startDate"`
		EndDate     string   `json:"endDate"`
		Score       string   `json:"score"`
		Courses     []string `json:"courses"`
	} `json:"education"`
	Awards []struct {
		Title   string `json:"title"`
		Date    string `json:"date"`
		Awarder string `json:"awarder"`
		Summary string `json:"summary"`
	} `json:"awards"`
	Certificates []struct {
		Name   string `json:"name"`
		Date   string `json:"date"`
		Issuer string `json:"issuer"`
		URL    string `json:"url"`
	} `json:"certificates"`
	Publications []struct {
		Name        string `json:"name"`
		Publisher   string `json:"publisher"`
		ReleaseDate string `json:"releaseDate"`
		URL         string `json:"url"`
		Summary     string `json:"summary"`
	} `json:"publications"`
	Skills []struct {
		Name     string   `json:"name"`
		Level    string   `json:"level"`
		Keywords []string `json:"keywords"`
	} `json:"skills"`
	Languages []struct {
		Language string `json:"language"`
		Fluency  string `json:"fluency"`
	} `json:"languages"`
	Interests []struct {
		Name     string   `json:"name"`
		Keywords []string `json:"keywords"`
	} `json:"interests"`
	References []struct {
		Name      string `json:"name"`
		Reference string `json:"reference"`
	} `json:"references"`
	Projects []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Highlights  []string `json:"highlights"`
		StartDate   string   `json:"startDate"`
		EndDate     string   `json:"endDate"`
		URL         string   `json:"url"`
	} `json:"projects"`
}

func (r JSONResume) Parse(raw []byte) (resume.Data, error) {
	if err := checkShape(r.Name(), objectShape, raw); err != nil {
		return resume.Data{}, err
	}
	var in jrData
	if err := schema.Catch(raw, &in); err != nil {
		return resume.Data{}, &aierr.Error{Kind: aierr.BadRequest, Message: "The file is not a valid JSON Resume document.", Cause: err}
	}
	return finish(r.Name(), fromJSONResume(in))
}

func link(u string) resume.URL { return resume.URL{URL: strings.TrimSpace(u)} }

func fromJSONResume(in jrData) resume.Data {
	d := resume.Default()

	b := in.Basics
	d.Basics.Name = b.Name
	d.Basics.Headline = b.Label
	d.Basics.Email = b.Email
	d.Basics.Phone = b.Phone
	d.Basics.Location = b.Location.String()
	d.Basics.Website = link(b.URL)
	d.Picture.URL = b.Image
	d.Summary.Content = resume.FromPlain(b.Summary)

	s := &d.Sections
	for _, p := range b.Profiles {
		s.Profiles.Items = append(s.Profiles.Items, resume.Profile{
			Icon:     strings.ToLower(strings.TrimSpace(p.Network)),
			Network:  p.Network,
			Username: p.Username,
			Website:  link(p.URL),
		})
	}
	for _, w := range in.Work {
		company := w.Name
		if company == "" {
			company = w.Company
		}
		s.Experience.Items = append(s.Experience.Items, resume.Experience{
			Company:     company,
			Position:    w.Position,
			Location:    w.Location,
			Period:      period(w.StartDate, w.EndDate),
			Website:     link(w.URL),
			Description: resume.Text(w.Summary, w.Highlights),
		})
	}
	for _, v := range in.Volunteer {
		s.Volunteer.Items = append(s.Volunteer.Items, resume.Volunteer{
			Organization: v.Organization,
			Period:       period(v.StartDate, v.EndDate),
			Website:      link(v.URL),
			Description:  resume.Text(joinNonEmpty("\n\n", v.Position, v.Summary), v.Highlights),
		})
	}
	for _, e := range in.Education {
		s.Education.Items = append(s.Education.Items, resume.Education{
			School:      e.Institution,
			Degree:      e.StudyType,
			Area:        e.Area,
			Grade:       e.Score,
			Period:      period(e.StartDate, e.EndDate),
			Website:     link(e.URL),
			Description: resume.List(e.Courses),
		})
	}
	for _, a := range in.Awards {
		s.Awards.Items = append(s.Awards.Items, resume.Award{
			Title: a.Title, Awarder: a.Awarder, Date: a.Date, Description: resume.FromPlain(a.Summary),
		})
	}
	for _, c := range in.Certificates {
		s.Certifications.Items = append(s.Certifications.Items, resume.Certification{
			Title: c.Name, Issuer: c.Issuer, Date: c.Date, Website: link(c.URL),
		})
	}
	for _, p := range in.Publications {
		s.Publications.Items = append(s.Publications.Items, resume.Publication{
			Title: p.Name, Publisher: p.Publisher, Date: p.ReleaseDate, Website: link(p.URL),
			Description: resume.FromPlain(p.Summary),
		})
	}
	for _, sk := range in.Skills {
		s.Skills.Items = append(s.Skills.Items, resume.Skill{
			Name: sk.Name, Proficiency: sk.Level, Keywords: nonNil(sk.Keywords),
		})
	}
	for _, l := range in.Languages {
		s.Languages.Items = append(s.Languages.Items, resume.Language{Language: l.Language, Fluency: l.Fluency})
	}
	for _, i := range in.Interests {
		s.Interests.Items = append(s.Interests.Items, resume.Interest{Name: i.Name, Keywords: nonNil(i.Keywords)})
	}
	for _, r := range in.References {
		s.References.Items = append(s.References.Items, resume.Reference{Name: r.Name, Description: resume.FromPlain(r.Reference)})
	}
	for _, p := range in.Projects {
		s.Projects.Items = append(s.Projects.Items, resume.Project{
			Name:        p.Name,
			Period:      period(p.StartDate, p.EndDate),
			Website:     link(p.URL),
			Description: resume.Text(p.Description, p.Highlights),
		})
	}

	return d
}
