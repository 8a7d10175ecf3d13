// Package story holds the per-invocation request model: the starting URL,
// user-supplied overrides, and the metadata a site discoverer infers along
// the way.
package story

// Request is the working state for a single story download. User-supplied
// values (Name, Slug, Author) always win over inferred ones; the Effective*
// accessors resolve user value, then inferred value, then a fixed default.
type Request struct {
	DownloadURL string

	// User overrides from the CLI; empty when not supplied.
	Name   string
	Slug   string
	Author string

	// Values inferred during discovery.
	ChosenName   string
	ChosenSlug   string
	ChosenAuthor string

	// Agent names resolved from the site profile or CLI overrides.
	FetchAgent     string
	TransformAgent string
	PackagingAgent string

	SiteName          string
	SiteDocumentation string

	ForceFetch bool
	Verbose    bool
	Quiet      bool

	// InvocationCommand records how the tool was called, for provenance.
	InvocationCommand string
}

// Patch carries metadata inferred by a discovery step. The caller merges it
// into the Request; discoverers never mutate the Request themselves.
type Patch struct {
	Title  string
	Author string
}

// IsZero reports whether the patch carries nothing.
func (p Patch) IsZero() bool {
	return p.Title == "" && p.Author == ""
}

// Apply merges inferred metadata into the request. User-supplied fields are
// never touched; only the Chosen* values change.
func (r *Request) Apply(p Patch) {
	if p.Title != "" {
		r.ChosenName = p.Title
		r.ChosenSlug = Slugify(p.Title)
	}
	if p.Author != "" {
		r.ChosenAuthor = p.Author
	}
}

// EffectiveName returns the user-specified or inferred story name.
func (r *Request) EffectiveName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.ChosenName != "" {
		return r.ChosenName
	}
	return "Story"
}

// EffectiveSlug returns the user-specified or inferred directory slug.
func (r *Request) EffectiveSlug() string {
	if r.Slug != "" {
		return r.Slug
	}
	if r.ChosenSlug != "" {
		return r.ChosenSlug
	}
	return "story"
}

// EffectiveAuthor returns the user-specified or inferred author.
func (r *Request) EffectiveAuthor() string {
	if r.Author != "" {
		return r.Author
	}
	if r.ChosenAuthor != "" {
		return r.ChosenAuthor
	}
	return "Unknown"
}
