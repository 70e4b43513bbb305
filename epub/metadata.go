package epub

import "strings"

// extractMetadata converts the decoded OPF metadata into Metadata.
func extractMetadata(pkg *opfPackage) Metadata {
	om := &pkg.Metadata
	md := Metadata{
		Version:     pkg.Version,
		Titles:      nonEmptyValues(om.Titles),
		Language:    nonEmptyValues(om.Languages),
		Publisher:   firstValue(om.Publishers),
		Description: firstValue(om.Descriptions),
	}

	refines := refinesByID(om.Metas)
	for _, c := range om.Creators {
		name := strings.TrimSpace(c.Value)
		if name == "" {
			continue
		}
		a := Author{Name: name, FileAs: c.FileAs, Role: c.Role}
		if c.ID != "" {
			if a.FileAs == "" {
				a.FileAs = refines.lookup(c.ID, "file-as")
			}
			if a.Role == "" {
				a.Role = refines.lookup(c.ID, "role")
			}
		}
		md.Authors = append(md.Authors, a)
	}
	return md
}

func nonEmptyValues(els []opfDCElement) []string {
	var out []string
	for _, e := range els {
		if v := strings.TrimSpace(e.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstValue(els []opfDCElement) string {
	for _, e := range els {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// refineMap groups ePub 3 <meta refines="#id"> entries by the refined id.
type refineMap map[string][]opfMeta

func refinesByID(metas []opfMeta) refineMap {
	m := make(refineMap)
	for _, meta := range metas {
		if id, ok := strings.CutPrefix(meta.Refines, "#"); ok && id != "" {
			m[id] = append(m[id], meta)
		}
	}
	return m
}

func (m refineMap) lookup(id, property string) string {
	for _, meta := range m[id] {
		if meta.Property == property {
			if v := strings.TrimSpace(meta.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

func copyMetadata(in Metadata) Metadata {
	out := in
	out.Titles = append([]string(nil), in.Titles...)
	out.Authors = append([]Author(nil), in.Authors...)
	out.Language = append([]string(nil), in.Language...)
	return out
}
