package domain

// Principal is an opaque caller identity. The engine never interprets it
// beyond equality.
type Principal string

func (p Principal) String() string {
	return string(p)
}

// Tokens is an unsigned token amount. All ledger arithmetic checks bounds
// before mutating, so amounts never wrap.
type Tokens uint64

// Account is a ledger entry. Accounts exist implicitly: holding an entry
// means having been credited at genesis or by a transfer.
type Account struct {
	Owner  Principal `json:"owner"`
	Tokens Tokens    `json:"tokens"`
}

// TransferReceipt reports the outcome of a successful transfer.
type TransferReceipt struct {
	From       Principal `json:"from"`
	To         Principal `json:"to"`
	Amount     Tokens    `json:"amount"`
	Fee        Tokens    `json:"fee"`
	NewBalance Tokens    `json:"new_balance"`
}

// LedgerStats summarizes supply accounting. Burned covers transfer fees and
// proposal submission deposits, both removed from circulation permanently.
type LedgerStats struct {
	InitialSupply Tokens `json:"initial_supply"`
	Burned        Tokens `json:"burned"`
	Circulating   Tokens `json:"circulating"`
	Accounts      int    `json:"accounts"`
}
