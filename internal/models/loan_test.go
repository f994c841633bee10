package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleInterestAppliedUpFront(t *testing.T) {
	l := NewLoan(uuid.Nil, uuid.New(), LoanTerms{Type: LoanDeadline, Amount: 200, Interest: 10, InterestType: InterestSimple, Deadline: 3}, DealAccepted)
	assert.Equal(t, 220, l.TotalOwed)
	l.Compound()
	assert.Equal(t, 220, l.TotalOwed)

	c := NewLoan(uuid.Nil, uuid.New(), LoanTerms{Type: LoanDeadline, Amount: 200, Interest: 10, InterestType: InterestCompound, Deadline: 3}, DealAccepted)
	assert.Equal(t, 200, c.TotalOwed)
	c.Compound()
	c.Compound()
	assert.Equal(t, 242, c.TotalOwed)
}

func TestBankLoanBands(t *testing.T) {
	assert.Equal(t, 750, BankLoanLimit(300))
	assert.Equal(t, 3, BankLoanDeadline(300))
	assert.Equal(t, 5, BankLoanDeadline(500))
	assert.Equal(t, 5, BankLoanDeadline(800))
}

func TestLoanTermsValidate(t *testing.T) {
	assert.NoError(t, LoanTerms{Type: LoanPerTurn, Amount: 100, InterestType: InterestSimple, AmountPerTurn: 10}.Validate())
	assert.Error(t, LoanTerms{Type: LoanPerTurn, Amount: 100, InterestType: InterestSimple}.Validate())
	assert.Error(t, LoanTerms{Type: "weekly", Amount: 100, InterestType: InterestSimple}.Validate())
	assert.Error(t, LoanTerms{Type: LoanDeadline, Amount: -5, InterestType: InterestSimple, Deadline: 2}.Validate())
}

func TestPayLoanInFullRaisesCredit(t *testing.T) {
	players, _ := newTestPlayers(2)
	lender, borrower := players[0], players[1]
	l := NewLoan(lender.ID, borrower.ID, LoanTerms{Type: LoanDeadline, Amount: 400, InterestType: InterestCompound, Deadline: 4}, DealAccepted)
	require.NoError(t, lender.LoanPlayer(borrower, l))
	assert.Equal(t, DefaultStartingMoney-400, lender.Money)
	assert.Equal(t, DefaultStartingMoney+400, borrower.Money)

	borrower.PayLoan(l, 100)
	assert.Equal(t, 300, l.TotalOwed)
	assert.Len(t, borrower.Loans, 1)

	borrower.PayLoan(l, 300)
	assert.Empty(t, borrower.Loans)
	assert.Equal(t, DefaultCreditScore+100, borrower.CreditScore)
	assert.Equal(t, DefaultStartingMoney, lender.Money)
}

func TestOverdueLoanIsForced(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	l := NewLoan(uuid.Nil, p.ID, LoanTerms{Type: LoanDeadline, Amount: 100, InterestType: InterestCompound, Deadline: 1}, DealAccepted)
	p.TakeBankLoan(l)

	assert.Empty(t, p.AdvanceLoanDeadlines())
	due := p.AdvanceLoanDeadlines()
	require.Len(t, due, 1)

	st := p.ForceRepay(due[0])
	assert.Equal(t, StatusDueLoan, st.Kind)
	assert.Equal(t, DefaultStartingMoney, p.Money)
	assert.Equal(t, DefaultCreditScore-CreditPenalty, p.CreditScore)
	assert.Empty(t, p.Loans)
}

func TestPerTurnInstallments(t *testing.T) {
	players, _ := newTestPlayers(2)
	lender, borrower := players[0], players[1]
	l := NewLoan(lender.ID, borrower.ID, LoanTerms{Type: LoanPerTurn, Amount: 100, InterestType: InterestCompound, AmountPerTurn: 50}, DealAccepted)
	require.NoError(t, lender.LoanPlayer(borrower, l))

	borrower.PayTurnLoans()
	assert.Equal(t, 50, l.TotalOwed)
	borrower.PayTurnLoans()
	assert.Empty(t, borrower.Loans)
	assert.Equal(t, DefaultStartingMoney, lender.Money)
}

func TestLoanPlayerNeedsFunds(t *testing.T) {
	players, _ := newTestPlayers(2)
	players[0].Money = 10
	l := NewLoan(players[0].ID, players[1].ID, LoanTerms{Type: LoanPerTurn, Amount: 100, InterestType: InterestSimple, AmountPerTurn: 10}, DealProposed)
	assert.Error(t, players[0].LoanPlayer(players[1], l))
	assert.Empty(t, players[1].Loans)
}

func TestLastInstallmentIsCapped(t *testing.T) {
	players, _ := newTestPlayers(2)
	lender, borrower := players[0], players[1]
	l := NewLoan(lender.ID, borrower.ID, LoanTerms{Type: LoanPerTurn, Amount: 100, InterestType: InterestSimple, AmountPerTurn: 80}, DealAccepted)
	require.NoError(t, lender.LoanPlayer(borrower, l))

	borrower.PayTurnLoans()
	assert.Equal(t, 20, l.TotalOwed)
	borrower.PayTurnLoans()
	assert.Empty(t, borrower.Loans)
	assert.Equal(t, 0, l.TotalOwed)
	assert.Equal(t, DefaultStartingMoney, lender.Money)
	assert.Equal(t, DefaultStartingMoney, borrower.Money)
}

func TestInstallmentIntoDebtStillClosesPaidLoan(t *testing.T) {
	players, _ := newTestPlayers(2)
	lender, borrower := players[0], players[1]
	l := NewLoan(lender.ID, borrower.ID, LoanTerms{Type: LoanPerTurn, Amount: 100, InterestType: InterestSimple, AmountPerTurn: 100}, DealAccepted)
	require.NoError(t, lender.LoanPlayer(borrower, l))

	borrower.Money = 40
	borrower.PayTurnLoans()
	assert.Empty(t, borrower.Loans)
	assert.Equal(t, -60, borrower.Money)
	assert.Equal(t, lender.ID, borrower.InDebtTo)
	assert.Equal(t, DefaultCreditScore+25-CreditPenalty, borrower.CreditScore)
}

func TestPayLoanNeverOverpays(t *testing.T) {
	players, _ := newTestPlayers(2)
	lender, borrower := players[0], players[1]
	l := NewLoan(lender.ID, borrower.ID, LoanTerms{Type: LoanDeadline, Amount: 100, InterestType: InterestSimple, Deadline: 3}, DealAccepted)
	require.NoError(t, lender.LoanPlayer(borrower, l))

	borrower.PayLoan(l, 1000)
	assert.Equal(t, 0, l.TotalOwed)
	assert.Empty(t, borrower.Loans)
	assert.Equal(t, DefaultStartingMoney, borrower.Money)
}
