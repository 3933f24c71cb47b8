package prompt

import (
	"github.com/promptlane/promptlane/pkg/version"
)

// Resolver answers include directives from a fixed set of pre-loaded
// references. No I/O happens here; the reference set is fully populated by
// the caller before compilation begins.
type Resolver struct {
	refs []IncludeRef
}

// NewResolver creates a Resolver over the given references.
func NewResolver(refs []IncludeRef) *Resolver {
	return &Resolver{refs: refs}
}

// Resolve returns the content of the included prompt matching slug and
// ver. A concrete "major.minor.patch" must match a reference exactly; ""
// or "latest" selects the highest version among references with the slug.
// A slug or version no reference satisfies is an *IncludeNotFoundError.
func (r *Resolver) Resolve(slug, ver string) (string, error) {
	ref, err := r.lookup(slug, ver)
	if err != nil {
		return "", err
	}
	return ref.Content, nil
}

// lookup finds the matching reference, shared by Resolve and by schema
// merging (which needs the reference's declared variables).
func (r *Resolver) lookup(slug, ver string) (*IncludeRef, error) {
	if ver != "" && ver != version.Latest {
		for i := range r.refs {
			if r.refs[i].Slug == slug && r.refs[i].Version == ver {
				return &r.refs[i], nil
			}
		}
		return nil, &IncludeNotFoundError{Slug: slug, Version: ver}
	}

	var candidates []string
	for i := range r.refs {
		if r.refs[i].Slug == slug {
			candidates = append(candidates, r.refs[i].Version)
		}
	}
	if len(candidates) == 0 {
		return nil, &IncludeNotFoundError{Slug: slug, Version: ver}
	}

	best, err := version.LatestOf(candidates)
	if err != nil {
		return nil, err
	}

	for i := range r.refs {
		if r.refs[i].Slug == slug && r.refs[i].Version == best {
			return &r.refs[i], nil
		}
	}
	return nil, &IncludeNotFoundError{Slug: slug, Version: ver}
}
