package model

// IDNumberBusinessID is the identifier category under which a partner's
// Business ID is stored.
const IDNumberBusinessID = "business_id"

// IDNumber is a categorized identifier attached to a partner, such as a
// national business registration number.
type IDNumber struct {
	Category string
	Value    string
	ID       int64
}

// Partner is a counterparty in the directory. Identifiers live in the
// IDNumbers collection; BusinessID and SetBusinessID expose the
// business-id category as if it were a plain field.
type Partner struct {
	Name        string
	CountryCode string
	IDNumbers   []IDNumber
	ID          int64
}

// BusinessID returns the first identifier in the business-id category, or
// the empty string when none is present.
func (p *Partner) BusinessID() string {
	for _, n := range p.IDNumbers {
		if n.Category == IDNumberBusinessID {
			return n.Value
		}
	}
	return ""
}

// SetBusinessID upserts the business-id identifier: the first existing
// entry in the category is updated in place, otherwise a new entry is
// appended. An empty value removes the identifier.
func (p *Partner) SetBusinessID(value string) {
	for i, n := range p.IDNumbers {
		if n.Category == IDNumberBusinessID {
			if value == "" {
				p.IDNumbers = append(p.IDNumbers[:i], p.IDNumbers[i+1:]...)
				return
			}
			p.IDNumbers[i].Value = value
			return
		}
	}
	if value != "" {
		p.IDNumbers = append(p.IDNumbers, IDNumber{Category: IDNumberBusinessID, Value: value})
	}
}
