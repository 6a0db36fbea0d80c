package resume

func section[T any](title string) Section[T] {
	return Section[T]{Title: title, Columns: 1, Items: []T{}}
}

// Default returns an empty document with every field at its default. Slices
// are non-nil so the document always marshals to the full shape.
func Default() Data {
	return Data{
		Picture: DefaultPicture(),
		Basics: Basics{
			CustomFields: []CustomField{},
		},
		Summary: Summary{Title: "Summary", Columns: 1},
		Sections: Sections{
			Profiles:       section[Profile]("Profiles"),
			Experience:     section[Experience]("Experience"),
			Education:      section[Education]("Education"),
			Projects:       section[Project]("Projects"),
			Skills:         section[Skill]("Skills"),
			Languages:      section[Language]("Languages"),
			Interests:      section[Interest]("Interests"),
			Awards:         section[Award]("Awards"),
			Certifications: section[Certification]("Certifications"),
			Publications:   section[Publication]("Publications"),
			Volunteer:      section[Volunteer]("Volunteer"),
			References:     section[Reference]("References"),
		},
		CustomSections: []CustomSection{},
		Metadata:       DefaultMetadata(),
	}
}

// DefaultPicture returns the picture settings new documents start with.
func DefaultPicture() Picture {
	return Picture{
		Size:         80,
		AspectRatio:  1,
		BorderColor:  "rgba(0, 0, 0, 0.5)",
		ShadowColor:  "rgba(0, 0, 0, 0.5)",
		BorderRadius: 0,
	}
}

// DefaultMetadata returns the layout and styling new documents start with.
func DefaultMetadata() Metadata {
	return Metadata{
		Template: "onyx",
		Layout: Layout{
			SidebarWidth: 35,
			Pages: []LayoutPage{{
				Main:    []string{"profiles", "summary", "education", "experience", "projects", "volunteer", "references"},
				Sidebar: []string{"skills", "certifications", "awards", "languages", "interests", "publications"},
			}},
		},
		Page: Page{
			GapX:    4,
			GapY:    6,
			MarginX: 14,
			MarginY: 12,
			Format:  "a4",
			Locale:  "en-US",
		},
		Design: Design{
			Colors: Colors{
				Primary:    "rgba(220, 38, 38, 1)",
				Text:       "rgba(0, 0, 0, 1)",
				Background: "rgba(255, 255, 255, 1)",
			},
			Level: Level{Icon: "star", Type: "circle"},
		},
		Typography: Typography{
			Body: Font{
				FontFamily:  "IBM Plex Serif",
				FontWeights: []string{"400", "500"},
				FontSize:    10,
				LineHeight:  1.5,
			},
			Heading: Font{
				FontFamily:  "IBM Plex Serif",
				FontWeights: []string{"600"},
				FontSize:    14,
				LineHeight:  1.5,
			},
		},
	}
}
