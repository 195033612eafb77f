package models

// CardInput holds the user-supplied fields of a new card.
type CardInput struct {
	Question string
	Answer   string
	Category string
	Color    string
}

// CardPatch lists the editable fields to change. Nil fields are left as is.
type CardPatch struct {
	Question       *string
	Answer         *string
	Category       *string
	Color          *string
	Starred        *bool
	MarkedForLater *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p CardPatch) IsEmpty() bool {
	return p.Question == nil && p.Answer == nil && p.Category == nil &&
		p.Color == nil && p.Starred == nil && p.MarkedForLater == nil
}

// CardQuery narrows a card listing. Nil fields match every card.
type CardQuery struct {
	Category       *string
	Confidence     *int
	Starred        *bool
	MarkedForLater *bool
}
