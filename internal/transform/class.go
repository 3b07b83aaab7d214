package transform

import (
	"strings"

	"class-migrator/internal/classfile"
	"class-migrator/internal/common"
	"class-migrator/internal/diagnostic"
	"class-migrator/internal/helper"
	"class-migrator/internal/patch"
	"class-migrator/internal/redirect"
	"class-migrator/internal/scan"
)

func (s *Session) transformClass(res Resource) ([]Resource, error) {
	v, err := classfile.Parse(res.Data)
	if err != nil {
		return nil, err
	}

	this, err := v.ThisClassName()
	if err != nil {
		return nil, err
	}

	helperName := common.ClassName(common.PackageOf(string(s.classTable.Replace(this))), s.helper)

	// A class named like the helper is either a helper from an earlier run,
	// left alone, or a user class whose calls must not be redirected to
	// itself.
	collision := common.SimpleName(string(this)) == s.helper
	if collision {
		if helper.IsGenerated(v) {
			return nil, nil
		}

		var d diagnostic.Diagnostics
		d.AddWarning("helper_name_collision",
			"class has the simple name of the migration helper; its reflective calls are not redirected",
			res.Name, helperName)
		s.diags.Merge(d)
	}

	var plan *redirect.Plan
	if !collision {
		if plan, err = redirect.Scan(v, helperName); err != nil {
			return nil, err
		}
	}

	if plan != nil {
		s.report(res.Name, plan)
	}

	set := patch.Set{
		Strings:      scan.UTF8(v, s.classTable),
		StringSource: s.classTable,
	}

	if plan.Redirected() {
		set.Code = plan.Code
		set.CodeSource = plan.Rewrites
		set.Pool = plan.Pool
		set.PoolCount = plan.PoolCount
	}

	if set.Empty() {
		return nil, nil
	}

	data, err := patch.ApplyLimit(res.Data, v, set, s.maxSize)
	if err != nil {
		return nil, err
	}

	out := []Resource{{Name: s.rename(res.Name), Data: data}}

	if !plan.Redirected() {
		return out, nil
	}

	class, created, err := s.registry.Obtain(helperName, func() (*helper.Class, error) {
		return helper.Synthesize(helperName, s.runtimeEntries)
	})
	if err != nil {
		return nil, err
	}

	if created {
		out = append(out, Resource{Name: class.Resource(), Data: class.Bytes})
	}

	return out, nil
}

// report records the warnings of a redirect plan against resource name.
func (s *Session) report(name string, plan *redirect.Plan) {
	if len(plan.Warnings.Warnings) == 0 {
		return
	}

	var d diagnostic.Diagnostics
	for _, w := range plan.Warnings.Warnings {
		d.AddWarning(w.Code, w.Message, name, strings.TrimSpace(w.Subject+" "+w.Detail))
	}

	s.diags.Merge(d)
}

// rename maps a resource path through the slash table.
func (s *Session) rename(name string) string {
	return s.slash.ReplaceString(name)
}
