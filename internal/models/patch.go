package models

// CardPatch is the body of a card update. Nil fields are left untouched.
type CardPatch struct {
	IDLabels []string `json:"idLabels,omitempty"`
	Closed   *bool    `json:"closed,omitempty"`
}

// ArchivePatch returns the patch that closes a card.
func ArchivePatch() CardPatch {
	closed := true
	return CardPatch{Closed: &closed}
}

// CardCopy describes a copy of SourceCardID into ListID.
//
// KeepFromSource names the source card fields carried over, such as due or labels.
type CardCopy struct {
	SourceCardID   string
	ListID         string
	Name           string
	KeepFromSource []string
}
