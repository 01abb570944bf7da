package models

// Poll is the payload for a scheduling poll. Slots are the options voters
// pick from; responses reference them by index.
type Poll struct {
	Question  string         `json:"question"`
	Slots     []string       `json:"slots"`
	Responses []PollResponse `json:"responses"`
}

// PollResponse is one appended ballot. Names are free-form; duplicates are
// not rejected.
type PollResponse struct {
	Name  string `json:"name"`
	Votes []int  `json:"votes"`
}

// Tally returns the vote count per slot, derived on every view.
func (p *Poll) Tally() []int {
	counts := make([]int, len(p.Slots))
	for _, r := range p.Responses {
		for _, v := range r.Votes {
			if v >= 0 && v < len(counts) {
				counts[v]++
			}
		}
	}
	return counts
}
