package services

import (
	"testing"

	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/stretchr/testify/require"
)

func balanceByName(t *testing.T, balances []models.Balance, name string) models.Balance {
	t.Helper()
	for _, b := range balances {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("no balance for %q", name)
	return models.Balance{}
}

func requireZeroSum(t *testing.T, balances []models.Balance) {
	t.Helper()
	var sum float64
	for _, b := range balances {
		sum += b.Net
	}
	require.InDelta(t, 0, sum, 1e-9, "net balances must sum to zero")
}

func TestSettle_SingleEntryEvenSplit(t *testing.T) {
	expense := &models.Expense{
		Participants: []models.ExpenseParticipant{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Entries: []models.ExpenseEntry{
			{Description: "dinner", Amount: 30, PaidBy: "A", SplitBetween: []string{"A", "B", "C"}},
		},
	}

	balances := Settle(expense)
	requireZeroSum(t, balances)

	require.InDelta(t, 20, balanceByName(t, balances, "A").Net, 1e-9)
	require.InDelta(t, -10, balanceByName(t, balances, "B").Net, 1e-9)
	require.InDelta(t, -10, balanceByName(t, balances, "C").Net, 1e-9)
}

func TestSettle_PayerOutsideSplit(t *testing.T) {
	expense := &models.Expense{
		Participants: []models.ExpenseParticipant{{Name: "A"}, {Name: "B"}},
		Entries: []models.ExpenseEntry{
			{Description: "gift", Amount: 10, PaidBy: "A", SplitBetween: []string{"B"}},
		},
	}

	balances := Settle(expense)
	requireZeroSum(t, balances)
	require.InDelta(t, 10, balanceByName(t, balances, "A").Net, 1e-9)
	require.InDelta(t, -10, balanceByName(t, balances, "B").Net, 1e-9)
}

func TestSettle_MultipleEntriesZeroSum(t *testing.T) {
	expense := &models.Expense{
		Participants: []models.ExpenseParticipant{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}},
		Entries: []models.ExpenseEntry{
			{Amount: 100, PaidBy: "A", SplitBetween: []string{"A", "B", "C", "D"}},
			{Amount: 33.34, PaidBy: "B", SplitBetween: []string{"A", "C"}},
			{Amount: 7.5, PaidBy: "C", SplitBetween: []string{"C"}},
			{Amount: 0.01, PaidBy: "D", SplitBetween: []string{"A", "B", "C"}},
		},
	}

	balances := Settle(expense)
	requireZeroSum(t, balances)

	// Paying for only yourself is net neutral on that entry.
	c := balanceByName(t, balances, "C")
	require.InDelta(t, 100.0/4+33.34/2+7.5+0.01/3, c.Owed, 1e-9)
}

func TestSettle_NoEntries(t *testing.T) {
	expense := &models.Expense{
		Participants: []models.ExpenseParticipant{{Name: "A"}, {Name: "B"}},
	}

	for _, b := range Settle(expense) {
		require.Zero(t, b.Paid)
		require.Zero(t, b.Owed)
		require.Zero(t, b.Net)
	}
}

func TestRoundBalances_TwoDecimals(t *testing.T) {
	balances := []models.Balance{
		{Name: "A", Paid: 10, Owed: 10.0 / 3, Net: 10 - 10.0/3},
		{Name: "B", Owed: 10.0 / 3, Net: -10.0 / 3},
	}

	rounded := RoundBalances(balances)
	require.InDelta(t, 3.33, rounded[0].Owed, 1e-9)
	require.InDelta(t, 6.67, rounded[0].Net, 1e-9)
	require.InDelta(t, -3.33, rounded[1].Net, 1e-9)
	require.InDelta(t, 10, rounded[0].Paid, 1e-9)
}
