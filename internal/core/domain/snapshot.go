package domain

// Snapshot is a full copy of the governance state, taken atomically. It is
// what the durable-state loader hands the engine at boot and what the
// persistence worker writes back.
type Snapshot struct {
	Accounts      []Account    `json:"accounts"`
	Proposals     []Proposal   `json:"proposals"`
	Params        SystemParams `json:"params"`
	InitialSupply Tokens       `json:"initial_supply"`
	Burned        Tokens       `json:"burned"`
}
