package services

import "github.com/dmitrijs2005/sharebin/internal/server/models"

// Settle derives the net balance of every participant from the entry list.
// Each member of split_between owes amount/len(split_between) to paid_by,
// payers included. The computation keeps full float64 precision; rounding to
// the currency's minor unit happens only at display (RoundBalances), which
// keeps the sum of all nets at zero up to floating-point noise.
//
// Settlement is recomputed on every view: entries are mutable, so nothing
// here is ever persisted.
func Settle(expense *models.Expense) []models.Balance {
	balances := make([]models.Balance, len(expense.Participants))
	index := make(map[string]int, len(expense.Participants))
	for i, p := range expense.Participants {
		balances[i].Name = p.Name
		index[p.Name] = i
	}

	for _, entry := range expense.Entries {
		if i, ok := index[entry.PaidBy]; ok {
			balances[i].Paid += entry.Amount
		}
		if len(entry.SplitBetween) == 0 {
			continue
		}
		share := entry.Amount / float64(len(entry.SplitBetween))
		for _, name := range entry.SplitBetween {
			if i, ok := index[name]; ok {
				balances[i].Owed += share
			}
		}
	}

	for i := range balances {
		balances[i].Net = balances[i].Paid - balances[i].Owed
	}
	return balances
}

// RoundBalances rounds every figure to two decimals for display.
func RoundBalances(balances []models.Balance) []models.Balance {
	rounded := make([]models.Balance, len(balances))
	for i, b := range balances {
		rounded[i] = models.Balance{
			Name: b.Name,
			Paid: roundCents(b.Paid),
			Owed: roundCents(b.Owed),
			Net:  roundCents(b.Net),
		}
	}
	return rounded
}

func roundCents(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
