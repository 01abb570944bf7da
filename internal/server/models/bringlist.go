package models

// BringList is the payload for a potluck list: need-lines that guests claim
// against, plus free-form custom items added outside the needed list.
type BringList struct {
	Title       string       `json:"title"`
	Needs       []NeedLine   `json:"needs"`
	CustomItems []CustomItem `json:"custom_items"`
}

// NeedLine describes a required quantity of one item. The capacity invariant
// sum(Claims[].Amount) <= AmountNeeded must hold after every accepted claim.
type NeedLine struct {
	Item         string  `json:"item"`
	AmountNeeded float64 `json:"amount_needed"`
	Claims       []Claim `json:"claims"`
}

// Claimed returns the cumulative amount already claimed on the line.
func (n *NeedLine) Claimed() float64 {
	var total float64
	for _, c := range n.Claims {
		total += c.Amount
	}
	return total
}

// Remaining returns the unclaimed quantity on the line.
func (n *NeedLine) Remaining() float64 {
	return n.AmountNeeded - n.Claimed()
}

// Claim is one accepted contribution against a need-line. Token is the
// capability credential that allows withdrawing the claim later.
type Claim struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Token  string  `json:"token"`
}

// CustomItem is an addition outside the needed list, deletable only by its
// own token holder.
type CustomItem struct {
	Name   string  `json:"name"`
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
	Token  string  `json:"token"`
}
