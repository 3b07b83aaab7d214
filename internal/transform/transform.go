package transform

import "class-migrator/internal/patch"

// Transform migrates one resource. It returns no resources when res is
// unchanged, otherwise the replacement followed by any helper class this
// call synthesized. Failures are *ResourceError values; a
// *helper.TemplateError inside one means no further resource can succeed.
func (s *Session) Transform(res Resource) ([]Resource, error) {
	if size := int64(len(res.Data)); size > s.maxSize {
		return nil, &ResourceError{
			Name: res.Name,
			Err:  &patch.CapacityError{What: "resource", Size: size, Limit: s.maxSize},
		}
	}

	var (
		out []Resource
		err error
	)

	switch s.Classify(res.Name) {
	case KindClass:
		out, err = s.transformClass(res)
	case KindService:
		out = s.transformService(res)
	case KindText:
		out = s.transformText(res)
	case KindOther:
	}

	if err != nil {
		return nil, &ResourceError{Name: res.Name, Err: err}
	}

	return out, nil
}
