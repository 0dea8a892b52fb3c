package repositories

import "database/sql"

// Tx is a transaction-scoped executor: the SQLExecutor surface plus commit
// and rollback. Satisfied by *sql.Tx.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// TxStarter begins store transactions. Services that need a transaction take
// this instead of *sql.DB so the transactional path can run against fakes.
type TxStarter interface {
	Begin() (Tx, error)
}

type dbTxStarter struct {
	db *sql.DB
}

// NewTxStarter wraps a connection pool as a TxStarter.
func NewTxStarter(db *sql.DB) TxStarter {
	return dbTxStarter{db: db}
}

func (s dbTxStarter) Begin() (Tx, error) {
	return s.db.Begin()
}
