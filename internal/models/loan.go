package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
)

type LoanType string

const (
	LoanDeadline LoanType = "deadline"
	LoanPerTurn  LoanType = "per-turn"
)

type InterestType string

const (
	InterestSimple   InterestType = "simple"
	InterestCompound InterestType = "compound"
)

// DealStatus is shared by loans and trades.
type DealStatus string

const (
	DealProposed DealStatus = "proposed"
	DealAccepted DealStatus = "accepted"
	DealDeclined DealStatus = "declined"
)

// BankLoaner is the wire name of the bank as a loaner.
const BankLoaner = "BANK"

// LoanTerms are the fields a client proposes.
type LoanTerms struct {
	Loaner        string       `json:"loaner"`
	Type          LoanType     `json:"type"`
	Amount        int          `json:"amount"`
	Interest      int          `json:"interest"`
	InterestType  InterestType `json:"interestType"`
	AmountPerTurn int          `json:"amountPerTurn"`
	Deadline      int          `json:"deadline"`
}

// IsBank reports whether the terms name the bank as loaner.
func (t LoanTerms) IsBank() bool {
	return t.Loaner == "" || t.Loaner == BankLoaner || t.Loaner == "Bank"
}

// Loan is a debt owed by Loanee. A nil Loaner means the bank.
type Loan struct {
	ID            uuid.UUID
	Loaner        uuid.UUID
	Loanee        uuid.UUID
	Type          LoanType
	Amount        int
	Interest      int
	InterestType  InterestType
	Status        DealStatus
	AmountPerTurn int
	Deadline      int
	TurnsPassed   int
	TotalOwed     int
}

// NewLoan creates a loan. Simple interest is applied once up front.
func NewLoan(loaner, loanee uuid.UUID, terms LoanTerms, status DealStatus) *Loan {
	l := &Loan{
		ID:            uuid.New(),
		Loaner:        loaner,
		Loanee:        loanee,
		Type:          terms.Type,
		Amount:        terms.Amount,
		Interest:      terms.Interest,
		InterestType:  terms.InterestType,
		Status:        status,
		AmountPerTurn: terms.AmountPerTurn,
		Deadline:      terms.Deadline,
		TotalOwed:     terms.Amount,
	}
	if l.InterestType == InterestSimple {
		l.TotalOwed = WithInterest(l.Amount, l.Interest)
	}
	return l
}

// Validate rejects terms that cannot form a loan.
func (t LoanTerms) Validate() error {
	if t.Amount <= 0 {
		return fmt.Errorf("loan amount %d: %w", t.Amount, apperror.ErrMalformedAction)
	}
	if t.Interest < 0 {
		return fmt.Errorf("loan interest %d: %w", t.Interest, apperror.ErrMalformedAction)
	}
	switch t.InterestType {
	case InterestSimple, InterestCompound:
	default:
		return fmt.Errorf("interest type %q: %w", t.InterestType, apperror.ErrMalformedAction)
	}
	switch t.Type {
	case LoanDeadline:
		if !t.IsBank() && t.Deadline <= 0 {
			return fmt.Errorf("deadline %d: %w", t.Deadline, apperror.ErrMalformedAction)
		}
	case LoanPerTurn:
		if t.AmountPerTurn <= 0 {
			return fmt.Errorf("amount per turn %d: %w", t.AmountPerTurn, apperror.ErrMalformedAction)
		}
	default:
		return fmt.Errorf("loan type %q: %w", t.Type, apperror.ErrMalformedAction)
	}
	return nil
}

// IsBank reports whether the bank holds the loan.
func (l *Loan) IsBank() bool {
	return l.Loaner == uuid.Nil
}

// Compound grows the balance by one interest period; simple loans are unaffected.
func (l *Loan) Compound() {
	if l.InterestType != InterestCompound {
		return
	}
	l.TotalOwed = WithInterest(l.TotalOwed, l.Interest)
}

func (l *Loan) MarshalJSON() ([]byte, error) {
	loaner := BankLoaner
	if !l.IsBank() {
		loaner = l.Loaner.String()
	}
	return json.Marshal(struct {
		ID             string       `json:"id"`
		Type           LoanType     `json:"type"`
		Interest       int          `json:"interest"`
		InterestType   InterestType `json:"interestType"`
		Amount         int          `json:"amount"`
		Loaner         string       `json:"loaner"`
		Loanee         string       `json:"loanee"`
		AmountPerTurn  int          `json:"amountPerTurn"`
		RemainingToPay int          `json:"remainingToPay"`
		Deadline       int          `json:"deadline"`
		Status         DealStatus   `json:"status"`
		TurnsPassed    int          `json:"turnsPassed"`
	}{
		ID: l.ID.String(), Type: l.Type, Interest: l.Interest, InterestType: l.InterestType,
		Amount: l.Amount, Loaner: loaner, Loanee: l.Loanee.String(),
		AmountPerTurn: l.AmountPerTurn, RemainingToPay: l.TotalOwed,
		Deadline: l.Deadline, Status: l.Status, TurnsPassed: l.TurnsPassed,
	})
}

// BankLoanLimit is the largest bank loan a credit score allows.
func BankLoanLimit(creditScore int) int {
	return Percent(creditScore, 250)
}

// BankLoanDeadline is the number of turns a bank loan runs for at a credit score.
func BankLoanDeadline(creditScore int) int {
	if creditScore >= 500 && creditScore <= MaxCreditScore {
		return 5
	}
	return 3
}

// LoanPlayer funds an accepted player loan from p to the loanee.
func (p *Player) LoanPlayer(loanee *Player, loan *Loan) error {
	if p.Money < loan.Amount {
		return fmt.Errorf("cannot loan $%d with $%d: %w", loan.Amount, p.Money, apperror.ErrInsufficientFunds)
	}
	p.Money -= loan.Amount
	loanee.Gain(loan.Amount)
	loanee.Loans = append(loanee.Loans, loan)
	return nil
}

// TakeBankLoan credits a bank loan to p.
func (p *Player) TakeBankLoan(loan *Loan) {
	p.Loans = append(p.Loans, loan)
	p.Gain(loan.Amount)
}

func (p *Player) removeLoan(loan *Loan) {
	for i, l := range p.Loans {
		if l == loan {
			p.Loans = append(p.Loans[:i], p.Loans[i+1:]...)
			return
		}
	}
}

// LoanByID returns one of p's loans.
func (p *Player) LoanByID(id uuid.UUID) *Loan {
	for _, l := range p.Loans {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// IncreaseCreditScore raises the score by a quarter of a repaid amount, capped.
func (p *Player) IncreaseCreditScore(amount int) {
	p.CreditScore = min(p.CreditScore+amount/4, MaxCreditScore)
}

// CompoundLoans applies one period of compound interest to every loan.
func (p *Player) CompoundLoans() {
	for _, l := range p.Loans {
		l.Compound()
	}
}

// AdvanceLoanDeadlines counts a turn on every deadline loan and returns those now overdue.
func (p *Player) AdvanceLoanDeadlines() []*Loan {
	var due []*Loan
	for _, l := range p.Loans {
		if l.Deadline == 0 {
			continue
		}
		l.TurnsPassed++
		if l.TurnsPassed > l.Deadline {
			due = append(due, l)
		}
	}
	return due
}

// ForceRepay collects an overdue loan in full, docks the credit score and drops the loan.
func (p *Player) ForceRepay(loan *Loan) Status {
	p.settle(loan, loan.TotalOwed)
	p.CreditScore -= CreditPenalty
	p.removeLoan(loan)
	return DueLoan(loan.ID, p.ID)
}

// PayLoan pays amount towards loan, never more than is owed. A loan paid off is
// removed and improves credit.
func (p *Player) PayLoan(loan *Loan, amount int) {
	p.settle(loan, min(amount, loan.TotalOwed))
	if loan.TotalOwed <= 0 {
		p.removeLoan(loan)
		p.IncreaseCreditScore(loan.Amount)
	}
}

// PayTurnLoans collects one installment on every per-turn loan. An installment that
// leaves p in debt costs CreditPenalty and stops collection for this turn.
func (p *Player) PayTurnLoans() {
	for _, l := range append([]*Loan(nil), p.Loans...) {
		if l.Type != LoanPerTurn {
			continue
		}
		p.settle(l, min(l.AmountPerTurn, l.TotalOwed))
		if l.TotalOwed <= 0 {
			p.removeLoan(l)
			p.IncreaseCreditScore(l.Amount)
		}
		if p.Money < 0 {
			p.CreditScore -= CreditPenalty
			break
		}
	}
}

func (p *Player) settle(loan *Loan, amount int) {
	if loaner := p.lookup(loan.Loaner); loaner != nil {
		p.Pay(amount, loaner)
	} else {
		p.PayBank(amount)
	}
	loan.TotalOwed -= amount
}
