package resume

import (
	"errors"

	"github.com/google/uuid"

	"github.com/jasonyy2018/rresume/pkg/schema"
)

// Decode is the lenient pass: raw JSON is merged over Default() field by
// field, wrong-typed or out-of-range leaves keep their defaults, and items
// without an id receive a fresh one. It fails only when raw is not a JSON object.
func Decode(raw []byte) (Data, error) {
	d := Default()
	if err := schema.Catch(raw, &d); err != nil {
		return Data{}, err
	}
	AssignIDs(&d, nil)
	return d, nil
}

// DecodeValue is Decode for an already parsed JSON value.
func DecodeValue(v any) (Data, error) {
	d := Default()
	if err := schema.CatchValue(v, &d); err != nil {
		return Data{}, err
	}
	AssignIDs(&d, nil)
	return d, nil
}

// Normalize turns a model's structured answer into a document. The
// server-controlled fields are always replaced with defaults, whatever the
// model sent, and the result must pass strict validation.
func Normalize(raw []byte) (Data, error) {
	d, err := Decode(raw)
	if err != nil {
		msg := "expected a JSON object"
		if !errors.Is(err, schema.ErrShape) {
			msg = err.Error()
		}
		return Data{}, &ValidationError{
			Origin: OriginModel,
			Issues: []schema.ValidationError{{Message: msg}},
		}
	}

	Overlay(&d)

	if err := Validate(d, OriginModel); err != nil {
		return Data{}, err
	}
	return d, nil
}

// Overlay resets the fields the model is never trusted with.
func Overlay(d *Data) {
	d.CustomSections = []CustomSection{}
	d.Picture = DefaultPicture()
	d.Metadata = DefaultMetadata()
}

type identified interface {
	ItemID() string
	SetItemID(string)
}

func fillIDs[T any, PT interface {
	*T
	identified
}](items []T, newID func() string) {
	for i := range items {
		p := PT(&items[i])
		if p.ItemID() == "" {
			p.SetItemID(newID())
		}
	}
}

// AssignIDs gives every item, custom field and custom section without an id
// a new one. A nil newID uses random UUIDs.
func AssignIDs(d *Data, newID func() string) {
	if newID == nil {
		newID = uuid.NewString
	}

	s := &d.Sections
	fillIDs(s.Profiles.Items, newID)
	fillIDs(s.Experience.Items, newID)
	fillIDs(s.Education.Items, newID)
	fillIDs(s.Projects.Items, newID)
	fillIDs(s.Skills.Items, newID)
	fillIDs(s.Languages.Items, newID)
	fillIDs(s.Interests.Items, newID)
	fillIDs(s.Awards.Items, newID)
	fillIDs(s.Certifications.Items, newID)
	fillIDs(s.Publications.Items, newID)
	fillIDs(s.Volunteer.Items, newID)
	fillIDs(s.References.Items, newID)

	for i := range d.Basics.CustomFields {
		if d.Basics.CustomFields[i].ID == "" {
			d.Basics.CustomFields[i].ID = newID()
		}
	}
	for i := range d.CustomSections {
		cs := &d.CustomSections[i]
		if cs.ID == "" {
			cs.ID = newID()
		}
		fillIDs(cs.Items, newID)
	}
}
