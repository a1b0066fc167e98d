package pack

import (
	"github.com/tie/mrpacker/pack/hclspec"
)

// OverrideFile is a resolved overrides entry: source on disk and the
// archive path under overrides/.
type OverrideFile struct {
	Path   string
	Source string
}

// OverrideList merges overrides manifests into a single list with
// duplicate archive paths collapsed; a later manifest wins over an
// earlier one, matching the merge order of the mod list.
func OverrideList(ms []hclspec.Overrides) []OverrideFile {
	n := 0
	for _, m := range ms {
		n += len(m.Files)
	}
	if n <= 0 {
		return nil
	}

	files := make([]OverrideFile, 0, n)
	refs := make(map[string]int, n)

	for _, m := range ms {
		for _, f := range m.Files {
			of := OverrideFile{
				Path:   f.Path,
				Source: f.Source,
			}
			if i, ok := refs[f.Path]; ok {
				files[i] = of
				continue
			}
			refs[f.Path] = len(files)
			files = append(files, of)
		}
	}
	return files
}
