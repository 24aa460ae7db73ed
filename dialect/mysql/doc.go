/*
Package mysql implements MySQL dialect.

Identifiers are quoted with backticks. Data source names are parsed by
github.com/go-sql-driver/mysql and always get parseTime=true, so DATETIME
and TIMESTAMP columns scan into time.Time. Time zone defaults to UTC unless
loc is given in DSN.

Generators

MySQL has no sequence, generators are emulated by single-row tables:

  CREATE TABLE `GEN_PEOPLE` (`VALUE` BIGINT NOT NULL);
  INSERT INTO `GEN_PEOPLE` (`VALUE`) VALUES (0);

Next value is issued with LAST_INSERT_ID(expr), which is safe across
connections.

This dialect accepts one parameter:

  - seqcol=VALUE: Name of the value column of generator tables.
*/
package mysql
