package importer

import (
	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/resume"
)

// ReactiveResume imports the current export format, which is the document
// itself. Unknown fields are ignored and wrong-typed fields keep defaults.
type ReactiveResume struct{}

func (ReactiveResume) Name() string { return "Reactive Resume" }

func (r ReactiveResume) Parse(raw []byte) (resume.Data, error) {
	if err := checkShape(r.Name(), objectShape, raw); err != nil {
		return resume.Data{}, err
	}
	d, err := resume.Decode(raw)
	if err != nil {
		return resume.Data{}, &aierr.Error{Kind: aierr.BadRequest, Message: "The file is not a valid Reactive Resume export.", Cause: err}
	}
	return finish(r.Name(), d)
}
