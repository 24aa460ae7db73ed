package rowmap

import "github.com/jmoiron/sqlx"

// Tx wraps sqlx.Tx created by Connector.BeginTransaction
//
// Connector holds only one connection, pass the Tx to every call until it
// is committed or rolled back.
type Tx struct {
	tx *sqlx.Tx
	c  *Connector
}

// Commit is just same as sql.Tx.Commit
func (tx *Tx) Commit() error {
	return tx.tx.Commit()
}

// Rollback is just same as sql.Tx.Rollback
func (tx *Tx) Rollback() error {
	return tx.tx.Rollback()
}

// Tx returns internal *sqlx.Tx
func (tx *Tx) Tx() *sqlx.Tx {
	return tx.tx
}

// Connector returns the connector creating this transaction
func (tx *Tx) Connector() *Connector {
	return tx.c
}
