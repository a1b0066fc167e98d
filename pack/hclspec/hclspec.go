// Package hclspec defines the HCL schema for the overrides manifest.
package hclspec

type Overrides struct {
	Files []File `hcl:"file,block"`
}

// File maps a source file on disk to its path inside built packages.
type File struct {
	Path   string `hcl:"path,label"`
	Source string `hcl:"source,attr"`
}
