package cqrs

// ---------- Account queries ----------

// GetAccountQuery fetches a single account by ID.
type GetAccountQuery struct {
	AccountID string
}

// GetAccountByNumberQuery fetches a single account by its account number.
type GetAccountByNumberQuery struct {
	AccountNumber string
}

// ListAccountsByOwnerQuery fetches all accounts belonging to an owner.
type ListAccountsByOwnerQuery struct {
	OwnerID string
}

// GetBalanceQuery fetches the settled balance of an account.
type GetBalanceQuery struct {
	AccountID string
}

// ---------- Transaction queries ----------

// GetTransactionQuery fetches a single transaction by ID.
type GetTransactionQuery struct {
	TransactionID string
}

// GetTransactionByReferenceQuery fetches a single transaction by its
// display reference.
type GetTransactionByReferenceQuery struct {
	Reference string
}

// ListTransactionsByAccountQuery pages through transactions where the
// account is source or target, newest first.
type ListTransactionsByAccountQuery struct {
	AccountID string
	Page      int
	PageSize  int
}

// ListTransactionsByOwnerQuery pages through transactions across all of an
// owner's accounts, resolved through the account service.
type ListTransactionsByOwnerQuery struct {
	OwnerID  string
	Page     int
	PageSize int
}

// ListTransactionsByStatusQuery fetches transactions in a status, oldest
// first.
type ListTransactionsByStatusQuery struct {
	Status string
}

// ListStalePendingTransactionsQuery fetches PENDING transactions created
// more than OlderThanHours ago. Advisory, for operator use.
type ListStalePendingTransactionsQuery struct {
	OlderThanHours int
}
