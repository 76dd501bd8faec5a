package ticket

// Category is the fixed label set a ticket can be classified into.
// Classification never produces a value outside this set.
type Category string

const (
	CategoryBilling   Category = "Billing"
	CategoryTechnical Category = "Technical"
	CategorySecurity  Category = "Security"
	CategoryGeneral   Category = "General"
)

// Categories lists all valid labels in a stable order.
var Categories = []Category{CategoryBilling, CategoryTechnical, CategorySecurity, CategoryGeneral}

// Valid reports whether c is one of the fixed category labels.
func (c Category) Valid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategorySecurity, CategoryGeneral:
		return true
	}
	return false
}

// Review carries the reviewer's human-readable feedback on a draft.
type Review struct {
	Feedback string `json:"feedback"`
}

// Failure is one rejected draft/feedback pair captured by the attempt tracker.
type Failure struct {
	Draft    string `json:"draft"`
	Feedback string `json:"feedback"`
}

// Record is the single state object threaded through the pipeline for one
// support ticket. It is created once per submission and flows by value through
// each step; steps return a Patch with only the fields they changed.
type Record struct {
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Category    Category  `json:"category,omitempty"`
	Context     []string  `json:"context,omitempty"`
	RefineHint  string    `json:"refineHint,omitempty"`
	Draft       string    `json:"draft,omitempty"`
	Review      *Review   `json:"review,omitempty"`
	Approved    bool      `json:"approved"`
	Attempts    int       `json:"attempts"`
	Failures    []Failure `json:"failures,omitempty"`
}

// Patch is the typed partial update a step may return. Nil fields are left
// untouched by Apply; non-nil fields overwrite, including overwrites to an
// empty value (a non-nil empty Context deliberately clears stale snippets).
// Each step may only legally set the fields it owns; the constructors in the
// step packages keep that convention visible at the call site.
type Patch struct {
	Category   *Category
	Context    *[]string
	RefineHint *string
	Draft      *string
	Review     *Review
	Approved   *bool
	Attempts   *int
	Failures   *[]Failure
}

// Apply merges p into r and returns the updated record. Fields the patch does
// not mention persist unchanged.
func (r Record) Apply(p Patch) Record {
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Context != nil {
		r.Context = *p.Context
	}
	if p.RefineHint != nil {
		r.RefineHint = *p.RefineHint
	}
	if p.Draft != nil {
		r.Draft = *p.Draft
	}
	if p.Review != nil {
		r.Review = p.Review
	}
	if p.Approved != nil {
		r.Approved = *p.Approved
	}
	if p.Attempts != nil {
		r.Attempts = *p.Attempts
	}
	if p.Failures != nil {
		r.Failures = *p.Failures
	}
	return r
}

// Feedback returns the latest reviewer feedback, or "" when no review has run.
func (r Record) Feedback() string {
	if r.Review == nil {
		return ""
	}
	return r.Review.Feedback
}
