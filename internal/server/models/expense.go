package models

// Expense is the payload for a shared expense ledger. Participants are fixed
// at creation; entries are appended or removed by token holders only.
type Expense struct {
	Name         string               `json:"name"`
	Participants []ExpenseParticipant `json:"participants"`
	Entries      []ExpenseEntry       `json:"entries"`
}

// ExpenseParticipant pairs a display name with the capability token minted
// for that participant at expense creation. Tokens are never rotated.
type ExpenseParticipant struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// ExpenseEntry is one paid item. Amount is in currency units and must be
// positive; SplitBetween lists the participants sharing the cost.
type ExpenseEntry struct {
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	PaidBy       string   `json:"paid_by"`
	SplitBetween []string `json:"split_between"`
}

// ParticipantByToken returns the participant holding the given token, or nil.
func (e *Expense) ParticipantByToken(token string) *ExpenseParticipant {
	if token == "" {
		return nil
	}
	for i := range e.Participants {
		if e.Participants[i].Token == token {
			return &e.Participants[i]
		}
	}
	return nil
}

// HasParticipant reports whether name is one of the expense's participants.
func (e *Expense) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Balance is the derived settlement position of one participant: Paid is the
// sum of entries they paid for, Owed their share across all entries, and
// Net = Paid - Owed (positive means the group owes them).
type Balance struct {
	Name string  `json:"name"`
	Paid float64 `json:"paid"`
	Owed float64 `json:"owed"`
	Net  float64 `json:"net"`
}
