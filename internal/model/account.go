package model

// Account is the minimal chart-of-accounts view the matching engine
// needs: an identifier and the internal type that decides how a line on
// the account settles.
type Account struct {
	Code string
	Name string
	Type AccountType
	ID   int64
}
